package models

import "time"

// AskRequest is a question for the full retrieval-augmented pipeline.
// Filters and Limit narrow the retrieval step; Model overrides the
// configured chat model for this request only.
type AskRequest struct {
	Question string            `json:"question"`
	Filters  map[string]string `json:"filters,omitempty"`
	Limit    int               `json:"limit,omitempty"`
	Model    string            `json:"model,omitempty"`
}

// AskResponse carries the generated answer together with the documents it
// was grounded on. ID references the stored history record when history is
// enabled. Cached marks answers served from the answer cache.
type AskResponse struct {
	ID        string          `json:"id,omitempty"`
	Question  string          `json:"question"`
	Answer    string          `json:"answer"`
	Model     string          `json:"model"`
	Sources   []*SearchResult `json:"sources"`
	Cached    bool            `json:"cached,omitempty"`
	QueryTime int64           `json:"query_time_ms"`
}

// AskRecord is a persisted question/answer exchange. Sources lists the
// retrieved documents as "group_id: question" references. Feedback is -1,
// 0, or 1.
type AskRecord struct {
	ID         string    `json:"id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Model      string    `json:"model"`
	Sources    []string  `json:"sources,omitempty"`
	Feedback   int       `json:"feedback"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}
