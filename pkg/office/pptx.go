package office

import (
	"fmt"
	"strings"

	"eduai/pkg/domain"
)

const pptxRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="ppt/presentation.xml"/>
</Relationships>`

// BuildPptx renders a presentation material into a minimal PPTX package with
// one slide part per slide. Materials without a structured slide list get a
// single slide carrying the generic rendering.
func BuildPptx(material domain.Material) ([]byte, error) {
	slides := slidesFor(material)

	parts := []part{
		{name: "[Content_Types].xml", data: pptxContentTypes(len(slides))},
		{name: "_rels/.rels", data: pptxRels},
		{name: "ppt/presentation.xml", data: pptxPresentation(len(slides))},
		{name: "ppt/_rels/presentation.xml.rels", data: pptxPresentationRels(len(slides))},
	}
	for i, slide := range slides {
		parts = append(parts, part{
			name: fmt.Sprintf("ppt/slides/slide%d.xml", i+1),
			data: pptxSlide(slide),
		})
	}
	return writePackage(parts)
}

func slidesFor(material domain.Material) []domain.Slide {
	if presentation, ok := material.Content.Presentation(); ok && len(presentation.Slides) > 0 {
		return presentation.Slides
	}
	title := material.Content.Title()
	if title == "" {
		title = material.Title
	}
	body := material.Content.RawText
	if body == "" {
		body = string(material.Content.GeneratedContent)
	}
	return []domain.Slide{{Title: title, Content: body}}
}

func pptxContentTypes(slideCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `  <Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>
`, i)
	}
	b.WriteString("</Types>")
	return b.String()
}

func pptxPresentation(slideCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst>
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `    <p:sldId id="%d" r:id="rId%d"/>
`, 255+i, i)
	}
	b.WriteString(`  </p:sldIdLst>
</p:presentation>`)
	return b.String()
}

func pptxPresentationRels(slideCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
`)
	for i := 1; i <= slideCount; i++ {
		fmt.Fprintf(&b, `  <Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide%d.xml"/>
`, i, i)
	}
	b.WriteString("</Relationships>")
	return b.String()
}

func pptxSlide(slide domain.Slide) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main">
  <p:cSld>
    <p:spTree>
      <p:sp>
        <p:txBody>
          <a:p><a:r><a:t>%s</a:t></a:r></a:p>
          <a:p><a:r><a:t>%s</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sld>`, esc(slide.Title), esc(slide.Content))
}
