// Package gemini is a client for the Google Generative Language REST
// API with sequential model fallback: candidates are tried in a fixed
// priority order until one returns text.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storysmith/internal/errors"
)

// DefaultModels is the fallback priority order. Cheaper flash-lite
// variants come first; the latest aliases are the last resort.
var DefaultModels = []string{
	"models/gemini-2.5-flash-lite",
	"models/gemini-2.5-flash-lite-preview-09-2025",
	"models/gemini-2.5-flash",
	"models/gemini-2.5-flash-preview-09-2025",
	"models/gemini-2.0-flash-lite",
	"models/gemini-2.0-flash-lite-001",
	"models/gemini-2.0-flash",
	"models/gemini-2.0-flash-exp",
	"models/gemini-2.0-flash-001",
	"models/gemini-flash-latest",
	"models/gemini-flash-lite-latest",
}

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"

	// retryBackoff is the fixed pause between a failed attempt and the
	// next candidate. There is no per-model retry and no exponential
	// growth; one attempt per model, in order.
	retryBackoff = 500 * time.Millisecond
)

// Generator produces text from a prompt, reporting which model served it.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (text, model string, err error)
}

// Client calls the generateContent endpoint, falling back across
// models. It keeps no memory of which models failed on earlier calls.
type Client struct {
	apiKey     string
	baseURL    string
	models     []string
	backoff    time.Duration
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(url, "/") }
}

// WithModels overrides the fallback model list.
func WithModels(models []string) Option {
	return func(c *Client) { c.models = models }
}

// WithBackoff overrides the pause between failed attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.backoff = d }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a Client with the default model priority list.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		models:     DefaultModels,
		backoff:    retryBackoff,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// request/response shapes for the generateContent endpoint.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
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

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate tries each model in priority order with a single attempt and
// a fixed backoff between failures. On success it returns the generated
// text and the short form of the serving model identifier (the trailing
// path segment). When every candidate fails it returns
// errors.ErrGenerationUnavailable; per-model causes are discarded.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64) (string, string, error) {
	for i, model := range c.models {
		if i > 0 {
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return "", "", ctx.Err()
			}
		}

		text, err := c.generateOnce(ctx, model, prompt, temperature)
		if err != nil {
			continue
		}
		return text, shortModelID(model), nil
	}
	return "", "", errors.ErrGenerationUnavailable
}

func (c *Client) generateOnce(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{Temperature: temperature},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call %s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model %s returned status %d", model, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("model %s returned no candidates", model)
	}

	var sb strings.Builder
	for _, p := range parsed.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("model %s returned empty text", model)
	}
	return text, nil
}

// shortModelID returns the trailing path segment of a model identifier,
// e.g. "models/gemini-2.0-flash" -> "gemini-2.0-flash".
func shortModelID(model string) string {
	if idx := strings.LastIndex(model, "/"); idx >= 0 {
		return model[idx+1:]
	}
	return model
}
