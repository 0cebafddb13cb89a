// Package cli renders pipeline responses for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const resultDivider = "─────────────────────────────────────────────────────────"

// WriteSearchResults writes search results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	fmt.Fprintf(w, "\nFound %d results in %dms (%d matching in total)\n\n",
		len(response.Results), response.QueryTime, response.Total)
	for _, result := range response.Results {
		writeOneResult(w, result)
	}
	return nil
}

func writeOneResult(w io.Writer, result *models.SearchResult) {
	fmt.Fprintln(w, resultDivider)
	fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", result.Rank, result.Score)
	doc := result.Document
	if doc == nil {
		fmt.Fprintln(w)
		return
	}
	if doc.Group != "" || doc.Section != "" {
		fmt.Fprintf(w, "Group: %s | Section: %s\n", doc.Group, doc.Section)
	}
	fmt.Fprintf(w, "Q: %s\n", doc.Question)
	fmt.Fprintf(w, "\n%s\n", Truncate(doc.Text, 300))
	fmt.Fprintln(w)
}

// WriteAskResponse writes a generated answer with its sources to w in the
// given format.
func WriteAskResponse(w io.Writer, response *models.AskResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	origin := response.Model
	if response.Cached {
		origin += ", cached"
	}
	fmt.Fprintf(w, "\nAnswer (%s, %dms):\n\n%s\n", origin, response.QueryTime, response.Answer)
	if len(response.Sources) > 0 {
		fmt.Fprintf(w, "\nSources:\n")
		for _, src := range response.Sources {
			if src.Document == nil {
				continue
			}
			fmt.Fprintf(w, "  %d. %s: %s\n", src.Rank, src.Document.Group,
				TruncateWords(src.Document.Question, 12))
		}
	}
	fmt.Fprintln(w)
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
