package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/xuri/excelize/v2"
)

const markerText = `Frequently Asked Questions

section: General course questions
question: When does the course start?
The course starts on 15 Jan.
Check the calendar for the kickoff link.

question: Can I join later?
Yes, you can join at any time.

section: Homework
Question: How do I submit?
Use the submission form.
`

func TestParseMarkers(t *testing.T) {
	docs := ParseMarkers(markerText)
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}
	want := []models.Document{
		{
			Section:  "General course questions",
			Question: "When does the course start?",
			Text:     "The course starts on 15 Jan.\nCheck the calendar for the kickoff link.",
		},
		{
			Section:  "General course questions",
			Question: "Can I join later?",
			Text:     "Yes, you can join at any time.",
		},
		{
			Section:  "Homework",
			Question: "How do I submit?",
			Text:     "Use the submission form.",
		},
	}
	for i, w := range want {
		got := docs[i]
		if got.Section != w.Section || got.Question != w.Question || got.Text != w.Text {
			t.Errorf("document %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestParseMarkersIncomplete(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"no markers", "just some prose\nacross lines", 0},
		{"question without answer", "question: Why?\nquestion: How?\nBy hand.", 1},
		{"marker with empty question", "question:\nAnswer text.", 0},
		{"section only", "section: Lonely", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMarkers(tt.text); len(got) != tt.want {
				t.Errorf("got %d documents, want %d", len(got), tt.want)
			}
		})
	}
}

func TestParseMarkersCRLF(t *testing.T) {
	docs := ParseMarkers("question: A?\r\nAnswer.\r\n")
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0].Question != "A?" || docs[0].Text != "Answer." {
		t.Errorf("got %+v", docs[0])
	}
}

func TestParseMarkersNormalizesWhitespace(t *testing.T) {
	docs := ParseMarkers("section: General \t course\nquestion: When  does\tit start?\n15 Jan.")
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0].Section != "General course" {
		t.Errorf("section = %q", docs[0].Section)
	}
	if docs[0].Question != "When does it start?" {
		t.Errorf("question = %q", docs[0].Question)
	}
}

func TestExtractPlainInvalidUTF8(t *testing.T) {
	got, err := extractText([]byte("hello\x80world"), ".txt")
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	if got != "hello�world" {
		t.Errorf("got %q", got)
	}
}

// minimalDocx returns .docx zip bytes whose word/document.xml holds the given
// paragraphs, each split into one <w:t> run per element.
func minimalDocx(paragraphs ...[]string) []byte {
	var doc bytes.Buffer
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, runs := range paragraphs {
		doc.WriteString(`<w:p w:rsidR="00A1">`)
		for _, run := range runs {
			doc.WriteString(`<w:r><w:t xml:space="preserve">` + run + `</w:t></w:r>`)
		}
		doc.WriteString(`</w:p>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	fw, _ := w.Create("word/document.xml")
	_, _ = fw.Write(doc.Bytes())
	_ = w.Close()
	return buf.Bytes()
}

func TestExtractDOCXParagraphs(t *testing.T) {
	content := minimalDocx(
		[]string{"question: When does ", "the course start?"},
		[]string{"The course starts on 15 Jan."},
	)
	got, err := extractText(content, ".docx")
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	want := "question: When does the course start?\nThe course starts on 15 Jan."
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtractDOCXEntities(t *testing.T) {
	content := minimalDocx([]string{"Q&amp;A: use &lt;code&gt;"})
	got, err := extractText(content, ".docx")
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	if got != "Q&A: use <code>" {
		t.Errorf("got %q", got)
	}
}

func TestExtractDOCXContentTypesOverride(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	ct, _ := w.Create("[Content_Types].xml")
	_, _ = ct.Write([]byte(`<?xml version="1.0"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/word/document2.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`))
	fw, _ := w.Create("word/document2.xml")
	_, _ = fw.Write([]byte(`<w:document><w:body><w:p><w:r><w:t>From document2</w:t></w:r></w:p></w:body></w:document>`))
	_ = w.Close()

	got, err := extractText(buf.Bytes(), ".docx")
	if err != nil {
		t.Fatalf("extractText: %v", err)
	}
	if got != "From document2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractDOCXNotZip(t *testing.T) {
	if _, err := extractText([]byte("not a zip"), ".docx"); err == nil {
		t.Error("expected error for invalid docx")
	}
}

// faqWorkbook builds an XLSX with one FAQ sheet per entry of sheets.
func faqWorkbook(t *testing.T, sheets map[string][][]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	first := true
	for name, rows := range sheets {
		if first {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatal(err)
			}
			first = false
		} else {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatal(err)
			}
		}
		for i, row := range rows {
			cell, _ := excelize.CoordinatesToCellName(1, i+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatal(err)
			}
		}
	}
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	content := faqWorkbook(t, map[string][][]string{
		"Data Engineering": {
			{"Section", "Question", "Text", "Author"},
			{"General", "When does it start?", "15 Jan.", "alice"},
			{"General", "", "orphan answer", ""},
			{"Homework", "How to submit?", "Use the form.", ""},
		},
	})
	groups, err := parseWorkbook(content)
	if err != nil {
		t.Fatalf("parseWorkbook: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	g := groups[0]
	if g.ID != "data-engineering" {
		t.Errorf("group ID = %q, want %q", g.ID, "data-engineering")
	}
	if len(g.Documents) != 2 {
		t.Fatalf("got %d documents, want 2", len(g.Documents))
	}
	first := g.Documents[0]
	if first.Section != "General" || first.Question != "When does it start?" || first.Text != "15 Jan." {
		t.Errorf("unexpected first document: %+v", first)
	}
	if first.Extra["author"] != "alice" {
		t.Errorf("extra author = %q, want %q", first.Extra["author"], "alice")
	}
}

func TestParseWorkbookSkipsEmptySheets(t *testing.T) {
	content := faqWorkbook(t, map[string][][]string{
		"Notes": {{"just a header-less note"}},
	})
	groups, err := parseWorkbook(content)
	if err != nil {
		t.Fatalf("parseWorkbook: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestFileText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Course FAQ 2025.txt")
	if err := os.WriteFile(path, []byte(markerText), 0o600); err != nil {
		t.Fatal(err)
	}

	groups, err := New().File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}
	if groups[0].ID != "course-faq-2025" {
		t.Errorf("group ID = %q, want %q", groups[0].ID, "course-faq-2025")
	}
	if len(groups[0].Documents) != 3 {
		t.Errorf("got %d documents, want 3", len(groups[0].Documents))
	}
}

func TestFileDocx(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faq.docx")
	content := minimalDocx(
		[]string{"section: General"},
		[]string{"question: Why Go?"},
		[]string{"It compiles fast."},
	)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatal(err)
	}

	groups, err := New().File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if len(groups) != 1 || len(groups[0].Documents) != 1 {
		t.Fatalf("got %+v", groups)
	}
	doc := groups[0].Documents[0]
	if doc.Section != "General" || doc.Question != "Why Go?" || doc.Text != "It compiles fast." {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestFileErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("no markers here"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := New().File(filepath.Join(dir, "missing.txt")); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing file: error = %v, want ErrNotFound", err)
	}
	if _, err := New().File(empty); !errors.Is(err, models.ErrMalformedInput) {
		t.Errorf("no entries: error = %v, want ErrMalformedInput", err)
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"b.txt":      "question: B?\nAnswer b.",
		"a.md":       "question: A?\nAnswer a.",
		"ignore.csv": "not,supported",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	groups, err := New().Dir(dir)
	if err != nil {
		t.Fatalf("Dir: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	// WalkDir visits lexically, so a.md comes first.
	if groups[0].ID != "a" || groups[1].ID != "b" {
		t.Errorf("group order = %q, %q", groups[0].ID, groups[1].ID)
	}
}

func TestWriteKnowledgeBaseRoundTrip(t *testing.T) {
	groups := []models.Group{
		{ID: "g1", Documents: []models.Document{
			{Section: "s", Question: "q?", Text: "a.", Extra: map[string]string{"author": "bob"}},
		}},
	}
	path := filepath.Join(t.TempDir(), "kb", "knowledge_base.json")
	if err := WriteKnowledgeBase(path, groups); err != nil {
		t.Fatalf("WriteKnowledgeBase: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got []models.Group
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(got) != 1 || got[0].ID != "g1" || len(got[0].Documents) != 1 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	doc := got[0].Documents[0]
	if doc.Question != "q?" || doc.Extra["author"] != "bob" {
		t.Errorf("unexpected document: %+v", doc)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Data Engineering", "data-engineering"},
		{"Course FAQ 2025", "course-faq-2025"},
		{"  weird -- name!! ", "weird-name"},
		{"Sheet1", "sheet1"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
