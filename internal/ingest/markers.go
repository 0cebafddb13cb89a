package ingest

import (
	"strings"
	"unicode"

	"github.com/hyperjump/kotae/internal/models"
)

// Marker prefixes recognized by ParseMarkers, matched case-insensitively at
// the start of a line.
const (
	sectionMarker  = "section:"
	questionMarker = "question:"
)

// ParseMarkers converts marker-formatted FAQ text into documents. A
// "section:" line sets the section for subsequent entries; a "question:"
// line starts an entry; every following line up to the next marker is the
// entry's answer. Only complete entries (non-empty question and answer) are
// returned. Text before the first question is ignored.
func ParseMarkers(text string) []models.Document {
	var (
		docs     []models.Document
		section  string
		question string
		answer   []string
		open     bool
	)
	flush := func() {
		if !open {
			return
		}
		open = false
		body := strings.TrimSpace(strings.Join(answer, "\n"))
		answer = answer[:0]
		if question == "" || body == "" {
			return
		}
		docs = append(docs, models.Document{
			Section:  section,
			Question: question,
			Text:     body,
		})
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		switch {
		case strings.HasPrefix(lower, sectionMarker):
			flush()
			section = normalizeInline(trimmed[len(sectionMarker):])
		case strings.HasPrefix(lower, questionMarker):
			flush()
			question = normalizeInline(trimmed[len(questionMarker):])
			open = true
		case open:
			answer = append(answer, trimmed)
		}
	}
	flush()
	return docs
}

// normalizeInline trims text and collapses whitespace runs to single spaces.
// Extracted section and question lines can carry stray tabs or doubled
// spaces from the source editor.
func normalizeInline(text string) string {
	text = strings.TrimSpace(text)
	var b strings.Builder
	wasSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			if !wasSpace {
				b.WriteRune(' ')
				wasSpace = true
			}
		} else {
			b.WriteRune(r)
			wasSpace = false
		}
	}
	return b.String()
}
