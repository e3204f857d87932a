// Package office serializes generated materials into minimal Office Open XML
// packages. The output is a genuine ZIP archive with the required package
// parts, not a flat fragment behind a ZIP magic number; styling is minimal.
package office

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

const (
	// MIMEDocx is the claimed content type for exported documents.
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	// MIMEPptx is the claimed content type for exported presentations.
	MIMEPptx = "application/vnd.openxmlformats-officedocument.presentationml.presentation"
)

// part is a single named file inside the package.
type part struct {
	name string
	data string
}

// writePackage assembles the parts into a ZIP archive in order.
func writePackage(parts []part) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("create part %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			return nil, fmt.Errorf("write part %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return buf.Bytes(), nil
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string { return xmlEscaper.Replace(s) }
