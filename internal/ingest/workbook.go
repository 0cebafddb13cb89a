package ingest

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/hyperjump/kotae/internal/models"
	"github.com/xuri/excelize/v2"
)

// parseWorkbook converts an XLSX FAQ workbook into groups, one per non-empty
// sheet. The first row of each sheet names the columns: "section",
// "question", and "text" map to the interpreted fields, anything else passes
// through as an extra field. A "group_id" column is ignored since the sheet
// name supplies the group. Rows missing a question or answer are skipped.
func parseWorkbook(content []byte) ([]models.Group, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var groups []models.Group
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		docs := docsFromRows(rows)
		if len(docs) == 0 {
			continue
		}
		groups = append(groups, models.Group{ID: slugify(sheet), Documents: docs})
	}
	return groups, nil
}

func docsFromRows(rows [][]string) []models.Document {
	if len(rows) < 2 {
		return nil
	}
	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	var docs []models.Document
	for _, row := range rows[1:] {
		var doc models.Document
		for i, name := range header {
			if i >= len(row) || name == "" {
				continue
			}
			val := strings.TrimSpace(row[i])
			if val == "" {
				continue
			}
			switch name {
			case models.FieldSection:
				doc.Section = normalizeInline(val)
			case models.FieldQuestion:
				doc.Question = normalizeInline(val)
			case models.FieldText:
				doc.Text = val
			case models.FieldGroup:
				// sheet name wins
			default:
				if doc.Extra == nil {
					doc.Extra = make(map[string]string)
				}
				doc.Extra[name] = val
			}
		}
		if doc.Question == "" || doc.Text == "" {
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}
