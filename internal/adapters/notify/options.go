package notify

import (
	"math/rand"
	"time"

	"github.com/kairyx-ai/kairyx/pkg/logger"
)

// ExecutorOption applies a configuration option to the Executor.
type ExecutorOption func(*Executor)

// WithHistorySize bounds the number of dispatched actions kept in memory.
func WithHistorySize(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.historySize = n
		}
	}
}

// WithExecutorLogger sets a custom logger.
func WithExecutorLogger(log logger.Logger) ExecutorOption {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// WithExecutorNow sets the clock used to stamp dispatches. Intended for tests.
func WithExecutorNow(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

// FeedbackOption applies a configuration option to the Feedback simulator.
type FeedbackOption func(*Feedback)

// WithFeedbackSeed reseeds the simulator for reproducible outcomes.
func WithFeedbackSeed(seed int64) FeedbackOption {
	return func(f *Feedback) {
		f.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic seed for reproducible testing
	}
}

// WithFeedbackNow sets the clock used to stamp feedback. Intended for tests.
func WithFeedbackNow(now func() time.Time) FeedbackOption {
	return func(f *Feedback) {
		if now != nil {
			f.now = now
		}
	}
}
