// Package rag wires retrieval, prompt rendering, and generation into the
// question-answering pipeline.
package rag

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/index"
	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/prompt"
)

// Gateway generates an answer for a rendered prompt. An empty model selects
// the gateway's default.
type Gateway interface {
	Chat(ctx context.Context, prompt, model string) (string, error)
	Model() string
}

// History persists completed exchanges.
type History interface {
	Record(ctx context.Context, rec *models.AskRecord) error
}

// Engine answers questions over the active index. The index can be swapped
// at runtime while searches are in flight.
type Engine struct {
	mu    sync.RWMutex
	index *index.Index

	gateway Gateway
	cfg     *config.SearchConfig
	history History
	cache   *gocache.Cache
	logger  *zap.Logger
}

// Option configures optional engine dependencies.
type Option func(*Engine)

// WithHistory persists every exchange to h.
func WithHistory(h History) Option {
	return func(e *Engine) { e.history = h }
}

// WithAnswerCache serves repeated questions from an in-memory cache for ttl.
func WithAnswerCache(ttl time.Duration) Option {
	return func(e *Engine) { e.cache = gocache.New(ttl, 10*time.Minute) }
}

// WithLogger sets the engine logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// NewEngine creates an engine over idx. idx may be nil until the first
// SwapIndex; searches fail with models.ErrNotReady until then.
func NewEngine(idx *index.Index, gw Gateway, cfg *config.SearchConfig, opts ...Option) *Engine {
	e := &Engine{
		index:   idx,
		gateway: gw,
		cfg:     cfg,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if idx != nil {
		metrics.IndexDocuments.Set(float64(idx.DocCount()))
	}
	return e
}

// Search runs a retrieval query against the active index.
func (e *Engine) Search(ctx context.Context, query models.SearchQuery) (*models.SearchResponse, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.index == nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, models.ErrNotReady
	}

	res, err := e.index.Search(ctx, query)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SearchesTotal.WithLabelValues("success").Inc()
	metrics.SearchDuration.Observe(float64(res.QueryTime) / 1000)
	return res, nil
}

// Ask retrieves context for the question, renders the prompt, and asks the
// model. The response carries the sources the answer was grounded on.
func (e *Engine) Ask(ctx context.Context, req models.AskRequest) (*models.AskResponse, error) {
	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: question must not be empty", models.ErrInvalidQuery)
	}

	model := req.Model
	if model == "" {
		model = e.gateway.Model()
	}

	key := cacheKey(req, model)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			metrics.AnswerCacheTotal.WithLabelValues("hit").Inc()
			resp := cached.(models.AskResponse)
			resp.Cached = true
			return &resp, nil
		}
		metrics.AnswerCacheTotal.WithLabelValues("miss").Inc()
	}

	start := time.Now()

	limit := req.Limit
	if limit == 0 {
		limit = e.cfg.DefaultLimit
	}
	res, err := e.Search(ctx, models.SearchQuery{
		Query:   req.Question,
		Boosts:  e.cfg.Boosts,
		Filters: req.Filters,
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	docs := make([]*models.Document, len(res.Results))
	sources := make([]string, len(res.Results))
	for i, r := range res.Results {
		docs[i] = r.Document
		sources[i] = r.Document.Group + ": " + r.Document.Question
	}

	rendered, err := prompt.Build(req.Question, docs)
	if err != nil {
		return nil, err
	}

	answer, err := e.gateway.Chat(ctx, rendered, model)
	if err != nil {
		return nil, err
	}

	resp := &models.AskResponse{
		Question:  req.Question,
		Answer:    answer,
		Model:     model,
		Sources:   res.Results,
		QueryTime: time.Since(start).Milliseconds(),
	}

	// A failed history write must not lose a good answer.
	if e.history != nil {
		rec := &models.AskRecord{
			Question:   req.Question,
			Answer:     answer,
			Model:      model,
			Sources:    sources,
			DurationMs: resp.QueryTime,
		}
		if err := e.history.Record(ctx, rec); err != nil {
			e.logger.Warn("failed to record exchange", zap.Error(err))
		} else {
			resp.ID = rec.ID
		}
	}

	if e.cache != nil {
		e.cache.Set(key, *resp, gocache.DefaultExpiration)
	}
	return resp, nil
}

// SwapIndex replaces the active index and closes the old one. In-flight
// searches finish against the index they started with.
func (e *Engine) SwapIndex(idx *index.Index) {
	e.mu.Lock()
	old := e.index
	e.index = idx
	e.mu.Unlock()

	if idx != nil {
		metrics.IndexDocuments.Set(float64(idx.DocCount()))
		metrics.IndexRebuildsTotal.Inc()
	}
	if old != nil {
		_ = old.Close()
	}
}

// DocCount returns the number of documents in the active index.
func (e *Engine) DocCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.index == nil {
		return 0
	}
	return e.index.DocCount()
}

// Schema returns the active index schema, or the zero schema when no index
// is loaded.
func (e *Engine) Schema() index.Schema {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.index == nil {
		return index.Schema{}
	}
	return e.index.Schema()
}

// Ready reports whether an index is loaded.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.index != nil
}

// Close releases the active index.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.index == nil {
		return nil
	}
	err := e.index.Close()
	e.index = nil
	return err
}

// cacheKey identifies a question by its full retrieval parameters.
func cacheKey(req models.AskRequest, model string) string {
	var b strings.Builder
	b.WriteString(model)
	b.WriteByte('|')
	b.WriteString(req.Question)
	b.WriteByte('|')

	keys := make([]string, 0, len(req.Filters))
	for k := range req.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(req.Filters[k])
		b.WriteByte(';')
	}

	fmt.Fprintf(&b, "|%d", req.Limit)
	return b.String()
}
