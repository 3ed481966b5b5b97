// Package llm wraps hosted completion providers behind a small Completer
// interface so every caller (summarizer, critic, classifier) can be tested
// with a deterministic fake.
package llm

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when the provider credential is missing.
// Callers treat it as a configuration error surfaced in response metadata.
var ErrNotConfigured = errors.New("llm provider not configured")

// Completer issues a single system+user prompt and returns the raw model
// output.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls the wrapped function.
func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}
