package llm

import (
	"context"
	"errors"
)

// Completer sends document text to a generative model under the fixed
// mindmap system instruction and returns the raw completion.
type Completer interface {
	Complete(ctx context.Context, text string) (string, error)
}

// ErrNotConfigured is returned when no provider was wired.
var ErrNotConfigured = errors.New("LLM provider not configured")

// Func adapts a plain function to Completer.
type Func func(ctx context.Context, text string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, text string) (string, error) {
	if f == nil {
		return "", ErrNotConfigured
	}
	return f(ctx, text)
}
