package prompt

import (
	"strings"
	"testing"

	"eduai/pkg/domain"
)

func TestBuildIncludesRequestFields(t *testing.T) {
	p := Build(domain.KindQuiz, "Matematică", "8", "intermediar", "")
	for _, want := range []string{"Matematică", "clasei a 8-a", "intermediar", `"questions"`} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if !strings.Contains(p, "Răspunde DOAR cu JSON-ul valid") {
		t.Error("prompt missing the JSON-only directive")
	}
}

func TestBuildKindInstructionsDiffer(t *testing.T) {
	seen := map[string]domain.MaterialKind{}
	for _, kind := range domain.Kinds {
		p := Build(kind, "Istorie", "7", "ușor", "")
		if prev, dup := seen[p]; dup {
			t.Fatalf("kinds %s and %s produce the same prompt", prev, kind)
		}
		seen[p] = kind
	}
}

func TestBuildSchemaHints(t *testing.T) {
	cases := map[domain.MaterialKind]string{
		domain.KindQuiz:         `"correct"`,
		domain.KindLessonPlan:   `"activities"`,
		domain.KindPresentation: `"slides"`,
		domain.KindAnalogy:      `"analogies"`,
		domain.KindAssessment:   `"gradingRubric"`,
	}
	for kind, hint := range cases {
		if p := Build(kind, "Fizică", "9", "avansat", ""); !strings.Contains(p, hint) {
			t.Errorf("%s prompt missing schema hint %s", kind, hint)
		}
	}
}

func TestBuildAdditionalInfo(t *testing.T) {
	p := Build(domain.KindQuiz, "Biologie", "6", "ușor", "accent pe fotosinteză")
	if !strings.Contains(p, "Informații suplimentare: accent pe fotosinteză") {
		t.Fatalf("additional info not appended:\n%s", p)
	}
	p = Build(domain.KindQuiz, "Biologie", "6", "ușor", "   ")
	if strings.Contains(p, "Informații suplimentare") {
		t.Fatal("blank additional info still appended")
	}
}

func TestBuildUnknownKindFallsBack(t *testing.T) {
	p := Build("eseu", "Română", "5", "ușor", "")
	if !strings.Contains(p, genericInstruction) {
		t.Fatalf("unknown kind did not use the generic instruction:\n%s", p)
	}
}

func TestStudyPlan(t *testing.T) {
	p := StudyPlan("bacalaureat la matematică", "mediu", "5 ore pe săptămână")
	for _, want := range []string{"bacalaureat la matematică", "mediu", "5 ore pe săptămână", `"weeklyPlan"`, `"nextSteps"`} {
		if !strings.Contains(p, want) {
			t.Errorf("study plan prompt missing %q", want)
		}
	}
}
