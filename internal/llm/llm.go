// Package llm provides the language-model backend used to format route
// reports.
package llm

import "context"

// Generator is the interface for text generation backends.
// Implementations return the generated text for a system/user prompt pair.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
