// Package e2e provides end-to-end tests; this file builds minimal source
// files for the formats the ingester supports.
package e2e

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kotae/internal/models"
)

// SupportedFileExtensions is the list of file extensions used in E2E
// ingestion tests. The ingester also supports .pdf; a minimal PDF with
// extractable text is not generated here.
var SupportedFileExtensions = []string{".txt", ".md", ".docx", ".xlsx"}

// MarkerContent renders documents in the labeled plain-text format the
// ingester parses: a section line per section change, a question line per
// entry, and the answer on the following lines.
func MarkerContent(docs []models.Document) string {
	var b strings.Builder
	section := ""
	for _, d := range docs {
		if d.Section != section {
			section = d.Section
			fmt.Fprintf(&b, "section: %s\n\n", section)
		}
		fmt.Fprintf(&b, "question: %s\n%s\n\n", d.Question, d.Text)
	}
	return b.String()
}

// WriteMinimalFile returns the bytes of a minimal source file of the given
// extension holding the given documents. For plain types the content is the
// marker text; for binary types it is the file bytes.
func WriteMinimalFile(ext string, docs []models.Document) ([]byte, error) {
	switch ext {
	case ".txt", ".md":
		return []byte(MarkerContent(docs)), nil
	case ".docx":
		return minimalDocx(MarkerContent(docs)), nil
	case ".xlsx":
		return minimalXlsx(docs)
	default:
		return nil, fmt.Errorf("no minimal fixture for %s", ext)
	}
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// minimalDocx writes one paragraph per text line so the labeled lines survive
// extraction.
func minimalDocx(text string) []byte {
	var body strings.Builder
	for _, line := range strings.Split(text, "\n") {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + xmlEscaper.Replace(line) + `</w:t></w:r></w:p>`)
	}
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` + body.String() + `</w:body></w:document>`))
	_ = w.Close()
	return buf.Bytes()
}

// minimalXlsx writes a single sheet with a header row and one row per
// document, the column layout the workbook ingester expects.
func minimalXlsx(docs []models.Document) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	header := []string{"Section", "Question", "Text"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		return nil, err
	}
	for i, d := range docs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []string{d.Section, d.Question, d.Text}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			return nil, err
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
