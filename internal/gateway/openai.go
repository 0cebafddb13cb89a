// Package gateway sends chat completion requests to an OpenAI-compatible API.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/metrics"
	"github.com/hyperjump/kotae/internal/models"
)

// DefaultModel is used when neither the configuration nor the request names
// a chat model.
const DefaultModel = "gpt-4o"

// OpenAIGateway talks to an OpenAI-compatible chat completion API.
type OpenAIGateway struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// Config holds the gateway settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// New creates an OpenAI-compatible chat gateway.
func New(cfg *Config) *OpenAIGateway {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OpenAIGateway{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}
}

// Model returns the configured default chat model.
func (g *OpenAIGateway) Model() string {
	return g.model
}

// Chat sends prompt as a single user message and returns the content of the
// first choice. An empty model falls back to the configured default. All
// failures are wrapped with models.ErrGateway.
func (g *OpenAIGateway) Chat(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = g.model
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	duration := time.Since(start)

	if err != nil {
		metrics.GatewayRequestsTotal.WithLabelValues(model, "error").Inc()
		g.logger.Warn("chat completion failed", zap.String("model", model), zap.Error(err))
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.GatewayRequestsTotal.WithLabelValues(model, "error").Inc()
		return "", fmt.Errorf("empty chat response: %w", models.ErrGateway)
	}

	metrics.GatewayRequestsTotal.WithLabelValues(model, "success").Inc()
	metrics.GatewayRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.GatewayTokensTotal.WithLabelValues(model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.GatewayTokensTotal.WithLabelValues(model, "completion").Add(float64(resp.Usage.CompletionTokens))
	}

	g.logger.Debug("chat completion",
		zap.String("model", model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (g *OpenAIGateway) HealthCheck(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a readable error from the API response. Everything
// is wrapped with models.ErrGateway for correct 502 mapping.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), models.ErrGateway)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("chat API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, models.ErrGateway)
	}

	return fmt.Errorf("chat request failed: %v: %w", err, models.ErrGateway)
}
