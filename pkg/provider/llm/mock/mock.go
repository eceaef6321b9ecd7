// Package mock provides a test double for the llm.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/Kamalllx/evacuate/pkg/provider/llm"
)

// CompleteCall records a single invocation of Complete.
type CompleteCall struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the request passed to Complete.
	Req llm.CompletionRequest
}

// Provider is a mock implementation of llm.Provider.
type Provider struct {
	mu sync.Mutex

	// CompleteFunc, if set, is invoked for every call and its result
	// returned. When nil, Complete returns CompleteContent, CompleteErr.
	CompleteFunc func(req llm.CompletionRequest) (*llm.CompletionResponse, error)

	// CompleteContent is the reply text returned by the default behaviour.
	CompleteContent string

	// CompleteErr, if non-nil, is returned by the default behaviour.
	CompleteErr error

	// CompleteCalls records every call to Complete in order.
	CompleteCalls []CompleteCall
}

// Compile-time assertion that Provider satisfies the llm.Provider interface.
var _ llm.Provider = (*Provider)(nil)

// Complete records the call and returns the configured result.
func (p *Provider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	p.CompleteCalls = append(p.CompleteCalls, CompleteCall{Ctx: ctx, Req: req})
	fn := p.CompleteFunc
	content, err := p.CompleteContent, p.CompleteErr
	p.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return nil, err
	}
	return &llm.CompletionResponse{Content: content}, nil
}

// Calls returns a copy of the recorded Complete calls. Thread-safe.
func (p *Provider) Calls() []CompleteCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	calls := make([]CompleteCall, len(p.CompleteCalls))
	copy(calls, p.CompleteCalls)
	return calls
}

// Reset clears all recorded calls. Thread-safe.
func (p *Provider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CompleteCalls = nil
}
