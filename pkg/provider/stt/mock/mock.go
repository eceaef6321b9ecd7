// Package mock provides a test double for the stt.Provider interface.
//
// Use Provider to feed controlled transcripts to consumers and to verify the
// audio payloads and language hints passed to the STT backend.
package mock

import (
	"context"
	"sync"

	"github.com/Kamalllx/evacuate/pkg/provider/stt"
)

// TranscribeCall records a single invocation of Transcribe.
type TranscribeCall struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Req is the request passed to Transcribe.
	Req stt.Request
}

// Provider is a mock implementation of stt.Provider.
type Provider struct {
	mu sync.Mutex

	// TranscribeResult is returned by Transcribe when TranscribeFunc is nil.
	TranscribeResult stt.Result

	// TranscribeErr, if non-nil, is returned as the error from Transcribe
	// when TranscribeFunc is nil.
	TranscribeErr error

	// TranscribeFunc, if set, overrides the canned result and is invoked for
	// every call. Useful for per-call behaviour (e.g., detect-then-transcribe
	// sequences).
	TranscribeFunc func(req stt.Request) (stt.Result, error)

	// TranscribeCalls records every call to Transcribe in order.
	TranscribeCalls []TranscribeCall
}

// Compile-time assertion that Provider satisfies the stt.Provider interface.
var _ stt.Provider = (*Provider)(nil)

// Transcribe records the call and returns the configured result.
func (p *Provider) Transcribe(ctx context.Context, req stt.Request) (stt.Result, error) {
	p.mu.Lock()
	p.TranscribeCalls = append(p.TranscribeCalls, TranscribeCall{Ctx: ctx, Req: req})
	fn := p.TranscribeFunc
	res, err := p.TranscribeResult, p.TranscribeErr
	p.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return res, err
}

// Calls returns a copy of the recorded Transcribe calls. Thread-safe.
func (p *Provider) Calls() []TranscribeCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]TranscribeCall, len(p.TranscribeCalls))
	copy(calls, p.TranscribeCalls)
	return calls
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TranscribeCalls = nil
}
