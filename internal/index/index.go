// Package index provides the in-memory Bleve index over flattened
// knowledge-base documents, with field boosts and exact keyword filters.
package index

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/hyperjump/kotae/internal/models"
)

// Schema declares which document fields are searched as analyzed text and
// which are matched exactly as keywords. A field may appear in one list only.
type Schema struct {
	TextFields    []string `json:"text_fields"`
	KeywordFields []string `json:"keyword_fields"`
}

// DefaultSchema returns the standard FAQ schema: question, text, and section
// are searchable text; the group identifier is an exact-match keyword.
func DefaultSchema() Schema {
	return Schema{
		TextFields:    []string{models.FieldQuestion, models.FieldText, models.FieldSection},
		KeywordFields: []string{models.FieldGroup},
	}
}

// Validate rejects schemas whose text and keyword fields overlap.
func (s Schema) Validate() error {
	text := make(map[string]struct{}, len(s.TextFields))
	for _, f := range s.TextFields {
		text[f] = struct{}{}
	}
	for _, f := range s.KeywordFields {
		if _, ok := text[f]; ok {
			return fmt.Errorf("%w: field %q is both text and keyword", models.ErrInvalidSchema, f)
		}
	}
	return nil
}

// hasKeyword reports whether name is one of the schema's keyword fields.
func (s Schema) hasKeyword(name string) bool {
	for _, f := range s.KeywordFields {
		if f == name {
			return true
		}
	}
	return false
}

// Index is an immutable in-memory search index over a fixed document list.
// Build a new Index and swap it in to refresh; an Index is safe for
// concurrent searches.
type Index struct {
	index  bleve.Index
	schema Schema
	docs   []models.Document
}

// Build analyzes and indexes docs under the given schema. Document identity
// is positional: hit IDs are zero-padded ordinals so that sorting by ID
// reproduces insertion order.
func Build(schema Schema, docs []models.Document) (*Index, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	im := bleve.NewIndexMapping()
	docMapping := bleve.NewDocumentMapping()

	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so query terms
	// match exact words only.
	textFieldMapping.Analyzer = standard.Name
	for _, f := range schema.TextFields {
		docMapping.AddFieldMappingsAt(f, textFieldMapping)
	}

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	for _, f := range schema.KeywordFields {
		docMapping.AddFieldMappingsAt(f, keywordFieldMapping)
	}

	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping

	idx, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("creating in-memory index: %w", err)
	}

	batch := idx.NewBatch()
	for i := range docs {
		if err := batch.Index(docID(i), indexable(schema, &docs[i])); err != nil {
			idx.Close()
			return nil, fmt.Errorf("indexing document %d: %w", i, err)
		}
	}
	if err := idx.Batch(batch); err != nil {
		idx.Close()
		return nil, fmt.Errorf("writing index batch: %w", err)
	}

	return &Index{index: idx, schema: schema, docs: docs}, nil
}

// indexable projects a document onto the schema's fields. Fields outside the
// schema are never handed to Bleve, so pass-through fields stay unsearchable.
func indexable(schema Schema, doc *models.Document) map[string]string {
	m := make(map[string]string, len(schema.TextFields)+len(schema.KeywordFields))
	for _, f := range schema.TextFields {
		if v, ok := doc.Field(f); ok && v != "" {
			m[f] = v
		}
	}
	for _, f := range schema.KeywordFields {
		if v, ok := doc.Field(f); ok && v != "" {
			m[f] = v
		}
	}
	return m
}

func docID(i int) string {
	return fmt.Sprintf("%012d", i)
}

// Search runs the query and returns ranked hits. Boosts naming fields
// outside the schema's text fields are ignored, as are filters naming fields
// outside its keyword fields.
func (i *Index) Search(ctx context.Context, q models.SearchQuery) (*models.SearchResponse, error) {
	start := time.Now()

	if err := q.Validate(); err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequest(i.buildQuery(q))
	req.Size = q.Limit
	// Equal scores fall back to document ID, which is insertion order.
	req.SortBy([]string{"-_score", "_id"})

	res, err := i.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("index search failed: %w", err)
	}

	results := make([]*models.SearchResult, 0, len(res.Hits))
	for rank, hit := range res.Hits {
		doc, err := i.docByID(hit.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, &models.SearchResult{
			Document: doc,
			Score:    hit.Score,
			Rank:     rank + 1,
		})
	}

	return &models.SearchResponse{
		Query:     q.Query,
		Results:   results,
		Total:     int(res.Total),
		QueryTime: time.Since(start).Milliseconds(),
	}, nil
}

// buildQuery assembles the Bleve query. The must leg decides membership: a
// match-all plus one exact term query per filter, giving every passing
// document the same base score. The should leg layers per-field relevance on
// top without excluding anything, so documents that match no text field
// still return, ranked below those that do.
func (i *Index) buildQuery(q models.SearchQuery) blevequery.Query {
	must := make([]blevequery.Query, 0, 1+len(q.Filters))
	must = append(must, bleve.NewMatchAllQuery())
	for _, field := range sortedKeys(q.Filters) {
		if !i.schema.hasKeyword(field) {
			continue
		}
		tq := bleve.NewTermQuery(q.Filters[field])
		tq.SetField(field)
		must = append(must, tq)
	}
	conj := bleve.NewConjunctionQuery(must...)

	if strings.TrimSpace(q.Query) == "" {
		return conj
	}

	boolq := bleve.NewBooleanQuery()
	boolq.AddMust(conj)
	for _, field := range i.schema.TextFields {
		mq := bleve.NewMatchQuery(q.Query)
		mq.SetField(field)
		if boost, ok := q.Boosts[field]; ok {
			mq.SetBoost(boost)
		}
		boolq.AddShould(mq)
	}
	return boolq
}

func (i *Index) docByID(id string) (*models.Document, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n < 0 || n >= len(i.docs) {
		return nil, fmt.Errorf("index returned unknown document id %q", id)
	}
	return &i.docs[n], nil
}

// Schema returns the schema the index was built with.
func (i *Index) Schema() Schema {
	return i.schema
}

// DocCount returns the number of indexed documents.
func (i *Index) DocCount() int {
	return len(i.docs)
}

// Close releases the underlying Bleve index.
func (i *Index) Close() error {
	return i.index.Close()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
