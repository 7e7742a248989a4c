// Provider interface. Adapters (OpenAI, Ollama) implement it so the
// recommendation pipeline is never coupled to a specific LLM vendor.
package llm

import "context"

// Provider is the model-agnostic interface for LLM operations.
// Every failure mode of a call (transport error, non-success status, malformed
// response body) surfaces as a single error: callers decide degraded behavior
// without distinguishing failure subtypes.
type Provider interface {
	// ChatCompletion performs a non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Embed computes dense vector representations for a batch of texts.
	Embed(ctx context.Context, req EmbedRequest) (*EmbedResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable and operational.
	HealthCheck(ctx context.Context) error
}
