package ai

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/kairyx-ai/kairyx/pkg/metrics"
)

// Default sim client configuration constants.
const (
	defaultSimMinLatency = 80 * time.Millisecond
	defaultSimMaxLatency = 150 * time.Millisecond
	defaultSimSeed       = 42

	providerSim = "sim"
)

// SimClient simulates a generative model for demos and tests: it answers
// churn and engagement prompts with plausible fenced JSON after a simulated
// latency. Deterministic for a fixed seed.
type SimClient struct {
	minLatency    time.Duration
	maxLatency    time.Duration
	malformedRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimClient creates a simulated model client with configuration options.
func NewSimClient(opts ...SimOption) *SimClient {
	s := &SimClient{
		minLatency: defaultSimMinLatency,
		maxLatency: defaultSimMaxLatency,
		rng:        rand.New(rand.NewSource(defaultSimSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Model identifies the simulated model.
func (s *SimClient) Model() string {
	return providerSim
}

// Response answers the prompt with fenced JSON matching its intent.
func (s *SimClient) Response(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", ErrEmptyPrompt
	}
	start := time.Now()

	// Simulate model latency
	s.mu.Lock()
	latency := s.minLatency
	if s.maxLatency > s.minLatency {
		latency += time.Duration(s.rng.Int63n(int64(s.maxLatency - s.minLatency)))
	}
	s.mu.Unlock()

	select {
	case <-ctx.Done():
		metrics.RecordAICall(providerSim, outcomeTimeout)
		return "", fmt.Errorf("context cancelled: %w", ctx.Err())
	case <-time.After(latency):
	}

	// An occasional free-text reply exercises the callers' fallback paths.
	if s.malformedRate > 0 {
		s.mu.Lock()
		malformed := s.rng.Float64() < s.malformedRate
		s.mu.Unlock()
		if malformed {
			metrics.RecordAICall(providerSim, outcomeOK)
			metrics.RecordAILatency(providerSim, float64(time.Since(start).Milliseconds()))
			return "I'm sorry, I can't produce structured output right now.", nil
		}
	}

	var reply string
	switch {
	case strings.Contains(prompt, "churn_risk"):
		reply = s.churnReply()
	case strings.Contains(prompt, "decision"):
		reply = s.actionReply()
	default:
		reply = "OK"
	}

	metrics.RecordAICall(providerSim, outcomeOK)
	metrics.RecordAILatency(providerSim, float64(time.Since(start).Milliseconds()))
	return reply, nil
}

// churnReply fabricates a churn assessment. Fenced like real model output so
// downstream parsing exercises the same path.
func (s *SimClient) churnReply() string {
	risks := []string{"low", "medium", "high"}
	reasons := map[string]string{
		"low":    "Frequent recent sessions indicate an engaged player.",
		"medium": "Session frequency is tapering off compared to earlier activity.",
		"high":   "A long gap since the last session suggests the player is disengaging.",
	}

	s.mu.Lock()
	risk := risks[s.rng.Intn(len(risks))]
	s.mu.Unlock()

	return fmt.Sprintf("```json\n{\"churn_risk\": %q, \"reason\": %q}\n```", risk, reasons[risk])
}

// actionReply fabricates an engagement decision.
func (s *SimClient) actionReply() string {
	contents := []string{
		"We miss you! Come back today for a special reward.",
		"Your adventure is waiting. Log in now to claim a daily bonus.",
		"A new challenge just unlocked. Jump back in!",
	}

	s.mu.Lock()
	content := contents[s.rng.Intn(len(contents))]
	s.mu.Unlock()

	return fmt.Sprintf("```json\n{\"decision\": \"ACT\", \"channel\": \"push_notification\", \"content\": %q}\n```", content)
}

var _ Client = (*SimClient)(nil)
