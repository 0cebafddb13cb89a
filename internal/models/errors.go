package models

import "errors"

// Sentinel errors shared across the pipeline. Callers classify failures with
// errors.Is; packages wrap these with context via fmt.Errorf and %w.
var (
	// ErrNotFound reports that a knowledge-base source does not exist.
	ErrNotFound = errors.New("knowledge base not found")

	// ErrMalformedInput reports a knowledge base whose structure does not
	// match the expected shape of grouped documents.
	ErrMalformedInput = errors.New("malformed knowledge base")

	// ErrInvalidSchema reports an index schema whose text and keyword
	// fields overlap or are otherwise unusable.
	ErrInvalidSchema = errors.New("invalid index schema")

	// ErrInvalidQuery reports a search query with out-of-range parameters.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrMissingField reports a retrieved document that lacks a field
	// required to render the prompt.
	ErrMissingField = errors.New("missing document field")

	// ErrGateway reports a failure talking to the language-model service.
	ErrGateway = errors.New("language model gateway error")

	// ErrNotReady reports that no index has been loaded yet.
	ErrNotReady = errors.New("index not ready")
)
