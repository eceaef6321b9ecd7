// Package stt defines the Provider interface for Speech-to-Text backends.
//
// An STT provider wraps a transcription service (e.g., Sarvam AI) and exposes
// a uniform blocking interface: one audio payload in, one transcript out. The
// same call doubles as the language-detection collaborator — setting
// [Request.DetectLanguage] asks the provider to identify the spoken language
// instead of trusting the supplied hint.
//
// Implementations must be safe for concurrent use. Multiple transcriptions may
// run in parallel (one per live conversation session).
package stt

import "context"

// Request describes a single transcription call.
type Request struct {
	// Audio is the raw audio payload (typically WAV bytes decoded from the
	// client's base64 upload).
	Audio []byte

	// Language is the BCP-47 language tag the audio is expected to be in
	// (e.g., "hi-IN"). Providers may use it as a recognition hint.
	Language string

	// DetectLanguage asks the provider to identify the spoken language.
	// When set, callers should treat [Result.LanguageCode] as authoritative.
	DetectLanguage bool
}

// Result is the outcome of a successful transcription.
type Result struct {
	// Transcript is the recognised text. May be empty when the audio
	// contained no intelligible speech; callers decide whether that is fatal.
	Transcript string

	// LanguageCode is the language the provider believes the audio is in.
	// Falls back to the request's language hint when the provider does not
	// report one.
	LanguageCode string
}

// Provider is the abstraction over any blocking STT backend.
type Provider interface {
	// Transcribe converts one audio payload to text. The call blocks until
	// the provider responds or ctx is cancelled.
	//
	// Returns an error if the provider cannot be reached or rejects the
	// request. An empty transcript with a nil error is a valid result.
	Transcribe(ctx context.Context, req Request) (Result, error)
}
