// Package ai defines the generative model client contract and implementations.
package ai

import (
	"context"
	"strings"
)

// Client sends prompts to a generative model and returns its raw text reply.
// Replies are expected to contain JSON, possibly wrapped in code fences that
// callers strip with StripFences before parsing.
type Client interface {
	// Response sends a prompt and returns the model's text reply,
	// honoring ctx for cancellation.
	Response(ctx context.Context, prompt string) (string, error)

	// Model identifies the underlying model for logs and metrics.
	Model() string
}

// StripFences removes markdown code-fence markers from a model reply.
func StripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
