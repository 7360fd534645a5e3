// Package worker defines the import processing workers that move raw event
// batches from the lake into the warehouse.
package worker

import (
	"github.com/kairyx-ai/kairyx/pkg/logger"
)

// Option applies a configuration option to the ImportWorker.
type Option func(*ImportWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *ImportWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *ImportWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}
