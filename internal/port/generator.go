package port

import "context"

// Generator is the opaque text-generation function the synthesizers call.
// Implementations must treat every provider, network or auth failure
// identically: return an error and let the caller fall back to the
// deterministic template path. Callers never retry.
type Generator interface {
	// Generate produces a completion for the given prompts. The context
	// bounds the call; implementations must respect cancellation.
	Generate(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)

	// ModelName returns the name of the underlying model.
	ModelName() string
}
