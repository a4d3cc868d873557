// Package openai implements the query-enhancement client for
// OpenAI-compatible chat completion APIs.
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/domain"
	"github.com/notabhay/ghibligroceries/internal/metrics"
)

const providerName = "openai"

// Config holds the enhancement provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Client asks an OpenAI-compatible model to refine a search query via a
// single chat completion. Same contract as the Gemini client: one bounded
// call, no retries, all failures map to domain.ErrAIUnavailable.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewClient creates an OpenAI-compatible enhancement client.
func NewClient(cfg Config) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: float32(cfg.Temperature),
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// Enhance sends the prompt as a single user message and returns the raw
// completion text.
func (c *Client) Enhance(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Info("Calling OpenAI-compatible API",
		zap.String("model", c.model),
		zap.Int("prompt_length", len(prompt)),
	)
	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", c.fail("api_error", parseAPIError(err))
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", c.fail("empty_response", fmt.Errorf("%w: completion has no content", domain.ErrAIUnavailable))
	}

	metrics.AIRequestsTotal.WithLabelValues(providerName, "success").Inc()
	metrics.AIRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	return resp.Choices[0].Message.Content, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (c *Client) fail(kind string, err error) error {
	metrics.AIRequestsTotal.WithLabelValues(providerName, "error").Inc()
	metrics.AIErrorsTotal.WithLabelValues(providerName, kind).Inc()
	c.logger.Error("OpenAI-compatible API call failed",
		zap.String("failure_kind", kind),
		zap.Error(err),
	)
	return err
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrAIUnavailable so the orchestrator
// treats them as one failure class.
func parseAPIError(err error) error {
	wrap := domain.ErrAIUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: completion API error %d: %s", wrap, reqErr.HTTPStatusCode, string(reqErr.Body))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%w: completion API error %d: %s", wrap, apiErr.HTTPStatusCode, apiErr.Message)
	}

	return fmt.Errorf("%w: %v", wrap, err)
}
