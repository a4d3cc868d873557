// Package gemini implements the query-enhancement client for the Google
// Gemini generateContent API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/notabhay/ghibligroceries/internal/domain"
	"github.com/notabhay/ghibligroceries/internal/metrics"
)

const providerName = "gemini"

// rawResponseLogLimit caps how much of the upstream body lands in logs.
const rawResponseLogLimit = 2048

// Config holds the Gemini client settings.
type Config struct {
	APIKey      string
	Endpoint    string
	Temperature float64
	Timeout     time.Duration
	Logger      *zap.Logger
}

// Client calls the Gemini generateContent endpoint. One bounded request
// per enhancement, no retries: resilience is the caller's fallback path.
type Client struct {
	apiKey      string
	endpoint    string
	temperature float64
	httpClient  *http.Client
	logger      *zap.Logger
}

// NewClient creates a Gemini enhancement client.
func NewClient(cfg Config) *Client {
	return &Client{
		apiKey:      cfg.APIKey,
		endpoint:    cfg.Endpoint,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		logger:      cfg.Logger,
	}
}

// generateRequest mirrors the generateContent request body.
type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

// generateResponse mirrors the fields of the generateContent response
// this client actually reads.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Enhance sends the prompt and returns the model's raw text completion.
// Every failure maps to domain.ErrAIUnavailable and is logged exactly
// once with its kind.
func (c *Client) Enhance(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", c.fail("missing_key", fmt.Errorf("%w: api key is not set", domain.ErrAIUnavailable))
	}

	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{Temperature: c.temperature},
	})
	if err != nil {
		return "", c.fail("encode", fmt.Errorf("%w: encode request: %v", domain.ErrAIUnavailable, err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(body))
	if err != nil {
		return "", c.fail("request", fmt.Errorf("%w: build request: %v", domain.ErrAIUnavailable, err))
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("Calling Gemini API", zap.Int("prompt_length", len(prompt)))
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts, refused connections and DNS failures all land here.
		return "", c.fail("transport", fmt.Errorf("%w: %v", domain.ErrAIUnavailable, err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.fail("transport", fmt.Errorf("%w: read response: %v", domain.ErrAIUnavailable, err))
	}

	c.logger.Debug("Raw Gemini API response",
		zap.Int("http_code", resp.StatusCode),
		zap.ByteString("raw_response", truncate(raw)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", c.fail("http_status", fmt.Errorf("%w: unexpected status %d", domain.ErrAIUnavailable, resp.StatusCode))
	}

	var parsed generateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", c.fail("decode", fmt.Errorf("%w: decode response: %v", domain.ErrAIUnavailable, err))
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", c.fail("empty_response", fmt.Errorf("%w: response has no candidate text", domain.ErrAIUnavailable))
	}

	metrics.AIRequestsTotal.WithLabelValues(providerName, "success").Inc()
	metrics.AIRequestDuration.WithLabelValues(providerName).Observe(time.Since(start).Seconds())

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// HealthCheck verifies the client is usable. Gemini has no free probe
// endpoint, so this only asserts the key is configured.
func (c *Client) HealthCheck(_ context.Context) error {
	if c.apiKey == "" {
		return fmt.Errorf("gemini api key is not configured")
	}
	return nil
}

// fail logs and counts a failure branch exactly once and returns the error.
func (c *Client) fail(kind string, err error) error {
	metrics.AIRequestsTotal.WithLabelValues(providerName, "error").Inc()
	metrics.AIErrorsTotal.WithLabelValues(providerName, kind).Inc()
	c.logger.Error("Gemini API call failed",
		zap.String("failure_kind", kind),
		zap.Error(err),
	)
	return err
}

func truncate(b []byte) []byte {
	if len(b) > rawResponseLogLimit {
		return b[:rawResponseLogLimit]
	}
	return b
}
