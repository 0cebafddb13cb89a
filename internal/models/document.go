// Package models defines core data structures for knowledge-base documents,
// search queries, and pipeline results.
package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Names of the document fields this pipeline interprets. Any other field is
// carried through untouched in Document.Extra.
const (
	FieldQuestion = "question"
	FieldText     = "text"
	FieldSection  = "section"
	FieldGroup    = "group_id"
)

// Document is a single knowledge-base entry. Question, Text, and Section are
// the fields the pipeline interprets; Group is the owning group's identifier,
// set during flattening; Extra holds pass-through fields that are indexed and
// returned but never interpreted. A Document is never mutated once produced.
type Document struct {
	Question string
	Text     string
	Section  string
	Group    string
	Extra    map[string]string
}

// Group is one element of a raw knowledge-base collection: a group identifier
// and the documents that belong to it. It exists only during loading and
// ingestion; the indexed unit is the flattened []Document.
type Group struct {
	ID        string     `json:"group_id"`
	Documents []Document `json:"documents"`
}

// Field returns the value of the named field and whether the document carries
// it. Declared fields resolve to the struct members; anything else is looked
// up in Extra.
func (d *Document) Field(name string) (string, bool) {
	switch name {
	case FieldQuestion:
		return d.Question, true
	case FieldText:
		return d.Text, true
	case FieldSection:
		return d.Section, true
	case FieldGroup:
		return d.Group, true
	}
	v, ok := d.Extra[name]
	return v, ok
}

// Fields returns all fields as a flat map, including empty declared values.
// This is the representation handed to the search index.
func (d *Document) Fields() map[string]string {
	fields := make(map[string]string, 4+len(d.Extra))
	fields[FieldQuestion] = d.Question
	fields[FieldText] = d.Text
	fields[FieldSection] = d.Section
	fields[FieldGroup] = d.Group
	for k, v := range d.Extra {
		fields[k] = v
	}
	return fields
}

// FieldNames returns the names of all fields the document carries, sorted.
func (d *Document) FieldNames() []string {
	names := make([]string, 0, 4+len(d.Extra))
	names = append(names, FieldQuestion, FieldText, FieldSection, FieldGroup)
	for k := range d.Extra {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// MarshalJSON flattens the document into a single JSON object. The group
// field is omitted when unset so that documents inside a Group serialize
// without a redundant group_id.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, 4+len(d.Extra))
	out[FieldQuestion] = d.Question
	out[FieldText] = d.Text
	out[FieldSection] = d.Section
	if d.Group != "" {
		out[FieldGroup] = d.Group
	}
	for k, v := range d.Extra {
		out[k] = v
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a flat JSON object into the document, capturing
// undeclared fields in Extra. Every field value must be a JSON string.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = Document{}
	for key, val := range raw {
		var s string
		if err := json.Unmarshal(val, &s); err != nil {
			return fmt.Errorf("document field %q is not a string: %w", key, err)
		}
		switch key {
		case FieldQuestion:
			d.Question = s
		case FieldText:
			d.Text = s
		case FieldSection:
			d.Section = s
		case FieldGroup:
			d.Group = s
		default:
			if d.Extra == nil {
				d.Extra = make(map[string]string)
			}
			d.Extra[key] = s
		}
	}
	return nil
}
