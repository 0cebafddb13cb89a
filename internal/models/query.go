package models

import "fmt"

// DefaultLimit is the number of results returned when a query does not set
// an explicit limit.
const DefaultLimit = 5

// SearchQuery is a retrieval request against the index. Query is matched
// against the schema's text fields; an empty Query matches every document.
// Boosts multiplies the relevance weight of individual text fields. Filters
// restricts results to documents whose keyword fields equal the given values
// exactly. Limit caps the number of results; zero means DefaultLimit.
type SearchQuery struct {
	Query   string             `json:"query"`
	Boosts  map[string]float64 `json:"boosts,omitempty"`
	Filters map[string]string  `json:"filters,omitempty"`
	Limit   int                `json:"limit,omitempty"`
}

// Validate normalizes the query in place and rejects out-of-range values.
// A zero limit is treated as unset and replaced with DefaultLimit.
func (q *SearchQuery) Validate() error {
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	for field, boost := range q.Boosts {
		if boost <= 0 {
			return fmt.Errorf("%w: boost for field %q must be positive, got %g", ErrInvalidQuery, field, boost)
		}
	}
	return nil
}
