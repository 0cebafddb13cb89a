// Package loader reads grouped knowledge-base JSON from disk and flattens it
// into the document list the index consumes.
package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/hyperjump/kotae/internal/models"
)

// Load reads the knowledge base at path and returns its flattened documents.
// A missing file is reported as models.ErrNotFound; structural problems in
// the JSON are reported as models.ErrMalformedInput.
func Load(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading knowledge base %s: %w", path, err)
	}
	groups, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Flatten(groups), nil
}

// Parse decodes raw knowledge-base JSON: a top-level array of groups, each an
// object carrying a string "group_id" and a "documents" array of flat string
// objects. Anything else fails with models.ErrMalformedInput naming the
// offending group.
func Parse(data []byte) ([]models.Group, error) {
	var rawGroups []json.RawMessage
	if err := json.Unmarshal(data, &rawGroups); err != nil {
		return nil, fmt.Errorf("%w: top level is not an array of groups: %v", models.ErrMalformedInput, err)
	}

	groups := make([]models.Group, 0, len(rawGroups))
	for i, raw := range rawGroups {
		group, err := parseGroup(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: group %d: %v", models.ErrMalformedInput, i, err)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func parseGroup(raw json.RawMessage) (models.Group, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.Group{}, errors.New("not a JSON object")
	}

	idRaw, ok := fields["group_id"]
	if !ok {
		return models.Group{}, errors.New("missing group_id")
	}
	var id string
	if err := json.Unmarshal(idRaw, &id); err != nil {
		return models.Group{}, errors.New("group_id is not a string")
	}

	docsRaw, ok := fields["documents"]
	if !ok {
		return models.Group{}, errors.New("missing documents")
	}
	var docs []models.Document
	if err := json.Unmarshal(docsRaw, &docs); err != nil {
		return models.Group{}, fmt.Errorf("documents: %v", err)
	}

	return models.Group{ID: id, Documents: docs}, nil
}

// Flatten stamps each group's identifier onto copies of its documents and
// concatenates them in group order. The source groups are left untouched, so
// the same parsed knowledge base can be flattened repeatedly.
func Flatten(groups []models.Group) []models.Document {
	total := 0
	for _, g := range groups {
		total += len(g.Documents)
	}

	docs := make([]models.Document, 0, total)
	for _, g := range groups {
		for _, d := range g.Documents {
			d.Group = g.ID
			docs = append(docs, d)
		}
	}
	return docs
}
