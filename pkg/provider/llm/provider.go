// Package llm defines the Provider interface for language-model backends.
//
// The generation stage of the conversation pipeline consumes this interface:
// one fully-assembled prompt in, one raw completion out. Streaming and tool
// calling are deliberately absent — every pipeline stage is a blocking,
// single-attempt call and the structured-answer contract is enforced by
// parsing the raw text downstream, not by provider-side schemas.
//
// Implementations must be safe for concurrent use.
package llm

import "context"

// Message is a single turn in the conversation sent to the model.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// CompletionRequest bundles everything a provider needs for one generation.
type CompletionRequest struct {
	// SystemPrompt is sent as the first (system-role) message.
	SystemPrompt string

	// Messages is the conversation history plus the current user message,
	// in chronological order.
	Messages []Message

	// Temperature controls sampling randomness. Zero means provider default.
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int
}

// CompletionResponse is the result of a successful Complete call.
type CompletionResponse struct {
	// Content is the model's raw reply text.
	Content string

	// Usage reports token accounting when the backend provides it.
	Usage Usage
}

// Usage holds token counts for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Provider is the abstraction over any LLM backend.
type Provider interface {
	// Complete generates a single completion for req. The call blocks until
	// the backend responds or ctx is cancelled.
	//
	// Returns an error if the backend cannot be reached or produces no
	// choices; the caller decides the degradation (the pipeline substitutes
	// a fixed apology and skips structured parsing).
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
