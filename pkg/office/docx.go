package office

import (
	"encoding/json"
	"fmt"
	"strings"

	"eduai/pkg/domain"
)

const docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const docxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// BuildDocx renders a material into a minimal DOCX package.
func BuildDocx(material domain.Material) ([]byte, error) {
	body := docxBody(material)
	document := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
%s  </w:body>
</w:document>`, body)

	return writePackage([]part{
		{name: "[Content_Types].xml", data: docxContentTypes},
		{name: "_rels/.rels", data: docxRels},
		{name: "word/document.xml", data: document},
	})
}

func docxBody(material domain.Material) string {
	var b strings.Builder
	title := material.Content.Title()
	if title == "" {
		title = material.Title
	}
	b.WriteString(heading(title, 28))

	switch material.Kind {
	case domain.KindQuiz:
		if quiz, ok := material.Content.Quiz(); ok {
			writeQuiz(&b, quiz)
			return b.String()
		}
	case domain.KindLessonPlan:
		if plan, ok := material.Content.LessonPlan(); ok {
			writeLessonPlan(&b, plan)
			return b.String()
		}
	case domain.KindAssessment:
		if assessment, ok := material.Content.Assessment(); ok {
			writeAssessment(&b, assessment)
			return b.String()
		}
	case domain.KindAnalogy:
		if analogy, ok := material.Content.Analogy(); ok {
			writeAnalogy(&b, analogy)
			return b.String()
		}
	}
	writeGeneric(&b, material.Content)
	return b.String()
}

func writeQuiz(b *strings.Builder, quiz domain.QuizContent) {
	b.WriteString(para(""))
	for i, q := range quiz.Questions {
		b.WriteString(heading(fmt.Sprintf("Întrebarea %d: %s", i+1, q.Question), 20))
		for j, opt := range q.Options {
			b.WriteString(para(fmt.Sprintf("%c. %s", 'A'+j, opt)))
		}
		if q.Correct >= 0 && q.Correct < len(q.Options) {
			b.WriteString(italic(fmt.Sprintf("Răspuns corect: %c", 'A'+q.Correct)))
		}
		if q.Explanation != "" {
			b.WriteString(para(q.Explanation))
		}
		b.WriteString(para(""))
	}
}

func writeLessonPlan(b *strings.Builder, plan domain.LessonPlanContent) {
	if plan.Duration != "" {
		b.WriteString(heading("Durată: "+plan.Duration, 20))
	}
	b.WriteString(para(""))
	b.WriteString(heading("Obiective:", 22))
	for _, obj := range plan.Objectives {
		b.WriteString(para("• " + obj))
	}
	b.WriteString(para(""))
	b.WriteString(heading("Activități:", 22))
	for _, act := range plan.Activities {
		b.WriteString(heading(fmt.Sprintf("%s (%s)", act.Name, act.Duration), 20))
		b.WriteString(para(act.Description))
		b.WriteString(para(""))
	}
	b.WriteString(heading("Resurse necesare:", 22))
	for _, res := range plan.Resources {
		b.WriteString(para("• " + res))
	}
	b.WriteString(para(""))
	b.WriteString(heading("Evaluare:", 22))
	b.WriteString(para(plan.Evaluation))
}

func writeAssessment(b *strings.Builder, assessment domain.AssessmentContent) {
	b.WriteString(para(""))
	for i, q := range assessment.Questions {
		b.WriteString(heading(fmt.Sprintf("%d. %s (%d puncte)", i+1, q.Question, q.Points), 20))
		if q.Type != "" {
			b.WriteString(italic("Tip: " + q.Type))
		}
		b.WriteString(para(""))
	}
	if assessment.GradingRubric != "" {
		b.WriteString(heading("Barem de notare:", 22))
		b.WriteString(para(assessment.GradingRubric))
	}
}

func writeAnalogy(b *strings.Builder, analogy domain.AnalogyContent) {
	b.WriteString(para(""))
	for _, a := range analogy.Analogies {
		b.WriteString(heading("Conceptul: "+a.Concept, 22))
		b.WriteString(heading("Analogia:", 20))
		b.WriteString(para(a.Analogy))
		b.WriteString(heading("Explicația:", 20))
		b.WriteString(para(a.Explanation))
		b.WriteString(para(""))
	}
	if len(analogy.Examples) > 0 {
		b.WriteString(heading("Exemple practice:", 22))
		for _, ex := range analogy.Examples {
			b.WriteString(para("• " + ex))
		}
	}
}

func writeGeneric(b *strings.Builder, content domain.MaterialContent) {
	b.WriteString(para(""))
	if content.RawText != "" {
		for _, line := range strings.Split(content.RawText, "\n") {
			b.WriteString(para(line))
		}
		return
	}
	pretty, err := json.MarshalIndent(json.RawMessage(content.GeneratedContent), "", "  ")
	if err != nil {
		pretty = content.GeneratedContent
	}
	for _, line := range strings.Split(string(pretty), "\n") {
		b.WriteString(para(line))
	}
}

func para(text string) string {
	if text == "" {
		return "    <w:p><w:r><w:t></w:t></w:r></w:p>\n"
	}
	return fmt.Sprintf("    <w:p><w:r><w:t xml:space=\"preserve\">%s</w:t></w:r></w:p>\n", esc(text))
}

func heading(text string, size int) string {
	return fmt.Sprintf("    <w:p><w:r><w:rPr><w:b/><w:sz w:val=\"%d\"/></w:rPr><w:t xml:space=\"preserve\">%s</w:t></w:r></w:p>\n", size, esc(text))
}

func italic(text string) string {
	return fmt.Sprintf("    <w:p><w:r><w:rPr><w:i/></w:rPr><w:t xml:space=\"preserve\">%s</w:t></w:r></w:p>\n", esc(text))
}
