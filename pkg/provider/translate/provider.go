// Package translate defines the Provider interface for text translation
// backends.
//
// A translation provider converts one bounded chunk of text between two
// BCP-47 language tags. Callers are responsible for chunking long inputs to
// the provider's size limit and for skipping the call entirely when source
// and target languages are equal.
//
// Implementations must be safe for concurrent use.
package translate

import "context"

// Provider is the abstraction over any blocking translation backend.
type Provider interface {
	// Translate converts text from the source language to the target
	// language. text should already be within the backend's per-request size
	// limit; providers do not chunk.
	//
	// Returns the translated text, or an error if the provider cannot be
	// reached or rejects the request. On error the caller decides the
	// fallback (typically: keep the original chunk).
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}
