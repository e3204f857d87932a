package domain

import (
	"encoding/json"
	"strings"
)

// MaterialContent is the stored content variant of a material. Exactly one of
// GeneratedContent (structured payload matching the kind's schema) or RawText
// (unparseable generator output) is set for generated materials.
type MaterialContent struct {
	GeneratedContent json.RawMessage `json:"generated_content,omitempty"`
	RawText          string          `json:"rawText,omitempty"`
	AdditionalInfo   string          `json:"additional_info,omitempty"`
}

// QuizContent is the structured payload for kind "quiz".
type QuizContent struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// LessonPlanContent is the structured payload for kind "plan_lectie".
type LessonPlanContent struct {
	Title      string           `json:"title"`
	Duration   string           `json:"duration"`
	Objectives []string         `json:"objectives"`
	Activities []LessonActivity `json:"activities"`
	Resources  []string         `json:"resources"`
	Evaluation string           `json:"evaluation"`
}

type LessonActivity struct {
	Name        string `json:"name"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// PresentationContent is the structured payload for kind "prezentare".
type PresentationContent struct {
	Title  string  `json:"title"`
	Slides []Slide `json:"slides"`
}

type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// AnalogyContent is the structured payload for kind "analogie".
type AnalogyContent struct {
	Title     string    `json:"title"`
	Analogies []Analogy `json:"analogies"`
	Examples  []string  `json:"examples"`
}

type Analogy struct {
	Concept     string `json:"concept"`
	Analogy     string `json:"analogy"`
	Explanation string `json:"explanation"`
}

// AssessmentContent is the structured payload for kind "evaluare".
type AssessmentContent struct {
	Title         string               `json:"title"`
	Questions     []AssessmentQuestion `json:"questions"`
	Answers       []json.RawMessage    `json:"answers"`
	GradingRubric string               `json:"gradingRubric"`
}

type AssessmentQuestion struct {
	Question string `json:"question"`
	Type     string `json:"type"`
	Points   int    `json:"points"`
}

// ParseGenerated interprets generator output as the kind's structured payload.
// Generation success is judged upstream; a payload that does not parse falls
// back to the RawText variant instead of failing the request.
func ParseGenerated(kind MaterialKind, text string) MaterialContent {
	trimmed := StripCodeFence(text)
	if parsesAs(kind, trimmed) {
		return MaterialContent{GeneratedContent: json.RawMessage(trimmed)}
	}
	return MaterialContent{RawText: text}
}

func parsesAs(kind MaterialKind, payload string) bool {
	data := []byte(payload)
	if !json.Valid(data) || !strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return false
	}
	var err error
	switch kind {
	case KindQuiz:
		err = json.Unmarshal(data, &QuizContent{})
	case KindLessonPlan:
		err = json.Unmarshal(data, &LessonPlanContent{})
	case KindPresentation:
		err = json.Unmarshal(data, &PresentationContent{})
	case KindAnalogy:
		err = json.Unmarshal(data, &AnalogyContent{})
	case KindAssessment:
		err = json.Unmarshal(data, &AssessmentContent{})
	default:
		err = json.Unmarshal(data, &map[string]any{})
	}
	return err == nil
}

// StripCodeFence removes a surrounding markdown code fence, if present.
// Generators routinely wrap JSON payloads in ```json ... ``` blocks.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// Title extracts the payload title, falling back to empty when the content is
// raw text or untitled.
func (c MaterialContent) Title() string {
	if len(c.GeneratedContent) == 0 {
		return ""
	}
	var probe struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(c.GeneratedContent, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.Title)
}

// Quiz decodes the structured payload as a quiz.
func (c MaterialContent) Quiz() (QuizContent, bool) {
	var out QuizContent
	if len(c.GeneratedContent) == 0 || json.Unmarshal(c.GeneratedContent, &out) != nil {
		return QuizContent{}, false
	}
	return out, true
}

// LessonPlan decodes the structured payload as a lesson plan.
func (c MaterialContent) LessonPlan() (LessonPlanContent, bool) {
	var out LessonPlanContent
	if len(c.GeneratedContent) == 0 || json.Unmarshal(c.GeneratedContent, &out) != nil {
		return LessonPlanContent{}, false
	}
	return out, true
}

// Presentation decodes the structured payload as a presentation.
func (c MaterialContent) Presentation() (PresentationContent, bool) {
	var out PresentationContent
	if len(c.GeneratedContent) == 0 || json.Unmarshal(c.GeneratedContent, &out) != nil {
		return PresentationContent{}, false
	}
	return out, true
}

// Analogy decodes the structured payload as an analogy set.
func (c MaterialContent) Analogy() (AnalogyContent, bool) {
	var out AnalogyContent
	if len(c.GeneratedContent) == 0 || json.Unmarshal(c.GeneratedContent, &out) != nil {
		return AnalogyContent{}, false
	}
	return out, true
}

// Assessment decodes the structured payload as an assessment.
func (c MaterialContent) Assessment() (AssessmentContent, bool) {
	var out AssessmentContent
	if len(c.GeneratedContent) == 0 || json.Unmarshal(c.GeneratedContent, &out) != nil {
		return AssessmentContent{}, false
	}
	return out, true
}
