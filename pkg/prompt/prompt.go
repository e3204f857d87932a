// Package prompt builds the natural-language instructions sent to the
// content generation service. Builders are pure and stateless.
package prompt

import (
	"fmt"
	"strings"

	"eduai/pkg/domain"
)

// Kind-specific instruction blocks. Each one pins the exact JSON schema the
// response must follow so the pipeline can parse it back.
var kindInstructions = map[domain.MaterialKind]string{
	domain.KindQuiz:         `Creează un quiz cu 10 întrebări cu variante multiple de răspuns (A, B, C, D). Include răspunsurile corecte și explicațiile la sfârșitul quiz-ului. Formatează răspunsul în JSON cu structura: {"title": "...", "questions": [{"question": "...", "options": ["A", "B", "C", "D"], "correct": 0, "explanation": "..."}]}`,
	domain.KindLessonPlan:   `Creează un plan de lecție detaliat cu obiective, activități, resurse necesare și evaluare. Structurează-l în secțiuni clare. Formatează răspunsul în JSON cu structura: {"title": "...", "duration": "...", "objectives": [...], "activities": [{"name": "...", "duration": "...", "description": "..."}], "resources": [...], "evaluation": "..."}`,
	domain.KindPresentation: `Creează o prezentare structurată cu slide-uri, incluzând introducere, dezvoltare și concluzii. Menționează punctele cheie pentru fiecare slide. Formatează răspunsul în JSON cu structura: {"title": "...", "slides": [{"title": "...", "content": "..."}]}`,
	domain.KindAnalogy:      `Creează analogii creative și ușor de înțeles care să explice conceptele complexe prin comparații cu situații familiare elevilor. Formatează răspunsul în JSON cu structura: {"title": "...", "analogies": [{"concept": "...", "analogy": "...", "explanation": "..."}], "examples": [...]}`,
	domain.KindAssessment:   `Creează o evaluare cu întrebări variate (întrebări scurte, dezvoltare, probleme practice). Include baremul de notare. Formatează răspunsul în JSON cu structura: {"title": "...", "questions": [{"question": "...", "type": "...", "points": 10}], "answers": [...], "gradingRubric": "..."}`,
}

const genericInstruction = "Generează materialul educațional solicitat."

const closingDirective = "Răspunde în limba română și asigură-te că conținutul este potrivit pentru nivelul specificat. IMPORTANT: Răspunde DOAR cu JSON-ul valid, fără text suplimentar înainte sau după."

// Build composes the full generation instruction for a material request.
// An unrecognized kind yields the generic instruction instead of failing;
// the pipeline validates the kind against the closed enum before calling here.
func Build(kind domain.MaterialKind, subject, gradeLevel, difficulty, additionalInfo string) string {
	base := fmt.Sprintf("Generează un %s pentru disciplina %s, destinat clasei a %s-a, cu nivelul de dificultate %s.", kind, subject, gradeLevel, difficulty)

	instruction, ok := kindInstructions[kind]
	if !ok {
		instruction = genericInstruction
	}

	var b strings.Builder
	b.WriteString(base)
	b.WriteString("\n\n")
	b.WriteString(instruction)
	if strings.TrimSpace(additionalInfo) != "" {
		b.WriteString("\n\nInformații suplimentare: ")
		b.WriteString(additionalInfo)
	}
	b.WriteString("\n\n")
	b.WriteString(closingDirective)
	return b.String()
}

// StudyPlan composes the consultant instruction for a personalized study plan.
func StudyPlan(objective, currentLevel, timeAvailable string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Ești un consultant educațional. Creează un plan de studiu personalizat pentru obiectivul: %s. Nivelul curent al elevului: %s. Timp disponibil: %s.", objective, currentLevel, timeAvailable)
	b.WriteString("\n\n")
	b.WriteString(`Formatează răspunsul în JSON cu structura: {"summary": "...", "timeEstimate": "...", "difficulty": "...", "weeklyPlan": [{"week": 1, "focus": "...", "tasks": [...]}], "recommendations": [...], "assessmentSchedule": [{"week": 1, "type": "..."}], "nextSteps": [...]}`)
	b.WriteString("\n\n")
	b.WriteString(closingDirective)
	return b.String()
}
