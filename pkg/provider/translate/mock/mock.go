// Package mock provides a test double for the translate.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/Kamalllx/evacuate/pkg/provider/translate"
)

// TranslateCall records a single invocation of Translate.
type TranslateCall struct {
	// Ctx is the context passed to Translate.
	Ctx context.Context
	// Text is the chunk passed to Translate.
	Text string
	// SourceLang and TargetLang are the language tags passed to Translate.
	SourceLang string
	TargetLang string
}

// Provider is a mock implementation of translate.Provider.
type Provider struct {
	mu sync.Mutex

	// TranslateFunc, if set, is invoked for every call and its result
	// returned. When nil, Translate returns Prefix + text (so tests can
	// assert the chunk passed through) and TranslateErr.
	TranslateFunc func(text, sourceLang, targetLang string) (string, error)

	// Prefix is prepended to the input text by the default behaviour.
	Prefix string

	// TranslateErr, if non-nil, is returned by the default behaviour.
	TranslateErr error

	// TranslateCalls records every call to Translate in order.
	TranslateCalls []TranslateCall
}

// Compile-time assertion that Provider satisfies translate.Provider.
var _ translate.Provider = (*Provider)(nil)

// Translate records the call and returns the configured result.
func (p *Provider) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	p.mu.Lock()
	p.TranslateCalls = append(p.TranslateCalls, TranslateCall{
		Ctx: ctx, Text: text, SourceLang: sourceLang, TargetLang: targetLang,
	})
	fn := p.TranslateFunc
	prefix, err := p.Prefix, p.TranslateErr
	p.mu.Unlock()

	if fn != nil {
		return fn(text, sourceLang, targetLang)
	}
	if err != nil {
		return "", err
	}
	return prefix + text, nil
}

// Calls returns a copy of the recorded Translate calls. Thread-safe.
func (p *Provider) Calls() []TranslateCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]TranslateCall, len(p.TranslateCalls))
	copy(calls, p.TranslateCalls)
	return calls
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranslateCalls = nil
}
