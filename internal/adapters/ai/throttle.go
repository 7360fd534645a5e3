package ai

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// Default throttle configuration constants.
const (
	defaultCallsPerSecond = 1.0
	defaultBurst          = 2
)

// Throttled wraps a Client with a token-bucket limit so churn sweeps cannot
// exceed the model's rate allowances.
type Throttled struct {
	inner   Client
	limiter *rate.Limiter
}

// NewThrottled wraps inner with a call rate limit. Non-positive values fall
// back to the defaults.
func NewThrottled(inner Client, callsPerSecond float64, burst int) *Throttled {
	if callsPerSecond <= 0 {
		callsPerSecond = defaultCallsPerSecond
	}
	if burst < 1 {
		burst = defaultBurst
	}
	return &Throttled{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(callsPerSecond), burst),
	}
}

// Model identifies the wrapped model.
func (t *Throttled) Model() string {
	return t.inner.Model()
}

// Response waits for a rate token, then delegates to the wrapped client.
func (t *Throttled) Response(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("throttle wait: %w", err)
	}
	metrics.RecordAIThrottleWait(float64(time.Since(start).Milliseconds()))
	return t.inner.Response(ctx, prompt)
}

var _ Client = (*Throttled)(nil)
