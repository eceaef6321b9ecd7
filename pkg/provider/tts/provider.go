// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., Sarvam AI) and
// presents a uniform blocking interface: one bounded text chunk in, one
// base64-encoded audio payload out. Callers are responsible for chunking
// long texts to the backend's per-request size limit.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// VoiceProfile identifies a synthesis voice at a provider.
type VoiceProfile struct {
	// Speaker is the provider-specific voice identifier (e.g., "meera").
	Speaker string

	// Language is the BCP-47 tag the voice is tuned for. Informational;
	// the synthesis language is passed per call.
	Language string
}

// Provider is the abstraction over any blocking TTS backend.
type Provider interface {
	// Synthesize converts one text chunk into speech in the given language
	// using the given voice. text should already be within the backend's
	// per-request size limit.
	//
	// Returns the synthesised audio as a base64-encoded string, or an error
	// if the provider cannot be reached, rejects the request, or returns no
	// audio. Per-chunk failures are the caller's to degrade on.
	Synthesize(ctx context.Context, text, language string, voice VoiceProfile) (string, error)
}
