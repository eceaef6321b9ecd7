// Package mock provides a test double for the tts.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/Kamalllx/evacuate/pkg/provider/tts"
)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Ctx is the context passed to Synthesize.
	Ctx context.Context
	// Text is the chunk passed to Synthesize.
	Text string
	// Language is the language tag passed to Synthesize.
	Language string
	// Voice is the VoiceProfile passed to Synthesize.
	Voice tts.VoiceProfile
}

// Provider is a mock implementation of tts.Provider.
type Provider struct {
	mu sync.Mutex

	// SynthesizeFunc, if set, is invoked for every call and its result
	// returned. When nil, Synthesize returns SynthesizeAudio, SynthesizeErr.
	SynthesizeFunc func(text, language string, voice tts.VoiceProfile) (string, error)

	// SynthesizeAudio is the base64 payload returned by the default behaviour.
	SynthesizeAudio string

	// SynthesizeErr, if non-nil, is returned by the default behaviour.
	SynthesizeErr error

	// SynthesizeCalls records every call to Synthesize in order.
	SynthesizeCalls []SynthesizeCall
}

// Compile-time assertion that Provider satisfies the tts.Provider interface.
var _ tts.Provider = (*Provider)(nil)

// Synthesize records the call and returns the configured result.
func (p *Provider) Synthesize(ctx context.Context, text, language string, voice tts.VoiceProfile) (string, error) {
	p.mu.Lock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{
		Ctx: ctx, Text: text, Language: language, Voice: voice,
	})
	fn := p.SynthesizeFunc
	audio, err := p.SynthesizeAudio, p.SynthesizeErr
	p.mu.Unlock()

	if fn != nil {
		return fn(text, language, voice)
	}
	return audio, err
}

// Calls returns a copy of the recorded Synthesize calls. Thread-safe.
func (p *Provider) Calls() []SynthesizeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]SynthesizeCall, len(p.SynthesizeCalls))
	copy(calls, p.SynthesizeCalls)
	return calls
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeCalls = nil
}
