package ai

import "context"

// TextGenerator produces text for a single prompt. The Gemini client
// implements this; tests substitute stubs.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
