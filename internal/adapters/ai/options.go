// Package ai defines the generative model client contract and implementations.
package ai

import (
	"math/rand"
	"net/http"
	"time"
)

// GeminiOption applies a configuration option to the GeminiClient.
type GeminiOption func(*GeminiClient)

// WithGeminiModel sets the model name used for generateContent calls.
func WithGeminiModel(model string) GeminiOption {
	return func(c *GeminiClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithGeminiBaseURL overrides the API endpoint. Intended for tests.
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithGeminiHTTPClient sets the HTTP client used for model calls.
func WithGeminiHTTPClient(httpClient *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithGeminiTimeout sets the per-call timeout. Zero disables the bound.
func WithGeminiTimeout(timeout time.Duration) GeminiOption {
	return func(c *GeminiClient) {
		if timeout >= 0 {
			c.timeout = timeout
		}
	}
}

// SimOption applies a configuration option to the SimClient.
type SimOption func(*SimClient)

// WithSimLatencyRange sets the simulated latency range.
func WithSimLatencyRange(minLatency, maxLatency time.Duration) SimOption {
	return func(s *SimClient) {
		if minLatency >= 0 && maxLatency >= minLatency {
			s.minLatency = minLatency
			s.maxLatency = maxLatency
		}
	}
}

// WithSimSeed reseeds the simulated model for reproducible replies.
func WithSimSeed(seed int64) SimOption {
	return func(s *SimClient) {
		s.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible testing
	}
}

// WithSimMalformedRate sets the fraction of replies emitted as free text
// instead of JSON, between 0 and 1.
func WithSimMalformedRate(rate float64) SimOption {
	return func(s *SimClient) {
		if rate >= 0 && rate <= 1 {
			s.malformedRate = rate
		}
	}
}
