package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// Default Gemini client configuration constants.
const (
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	defaultCallTimeout   = 20 * time.Second

	providerGemini = "gemini"
)

// Call outcome labels for metrics.
const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeTimeout = "timeout"
	outcomeEmpty   = "empty"
)

// GeminiClient talks to the Gemini generateContent REST endpoint.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewGeminiClient creates a Gemini client. The API key is mandatory; model,
// endpoint, HTTP client and per-call timeout have sensible defaults.
func NewGeminiClient(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNoAPIKey
	}
	c := &GeminiClient{
		apiKey:     strings.TrimSpace(apiKey),
		model:      defaultGeminiModel,
		baseURL:    defaultGeminiBaseURL,
		httpClient: http.DefaultClient,
		timeout:    defaultCallTimeout,
	}

	// Apply all options
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Model identifies the configured Gemini model.
func (c *GeminiClient) Model() string {
	return c.model
}

// Response sends a prompt to the model and returns its text reply. The call
// is bounded by the configured timeout; a timeout surfaces as an error the
// caller downgrades to an unknown classification.
func (c *GeminiClient) Response(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	start := time.Now()

	requestBody, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal model request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", strings.TrimRight(c.baseURL, "/"), c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("build model request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Key material travels only in a header, never in the URL or error text.
	req.Header.Set("x-goog-api-key", c.apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		outcome := outcomeError
		if errors.Is(err, context.DeadlineExceeded) {
			outcome = outcomeTimeout
		}
		metrics.RecordAICall(providerGemini, outcome)
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		metrics.RecordAICall(providerGemini, outcomeError)
		return "", fmt.Errorf("%w: status %d: %s", ErrBadStatus, res.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		metrics.RecordAICall(providerGemini, outcomeError)
		return "", fmt.Errorf("decode model response: %w", err)
	}

	var text string
	for _, candidate := range payload.Candidates {
		for _, part := range candidate.Content.Parts {
			if strings.TrimSpace(part.Text) != "" {
				text = strings.TrimSpace(part.Text)
				break
			}
		}
		if text != "" {
			break
		}
	}
	if text == "" {
		metrics.RecordAICall(providerGemini, outcomeEmpty)
		return "", ErrNoContent
	}

	metrics.RecordAICall(providerGemini, outcomeOK)
	metrics.RecordAILatency(providerGemini, float64(time.Since(start).Milliseconds()))
	return text, nil
}

var _ Client = (*GeminiClient)(nil)
