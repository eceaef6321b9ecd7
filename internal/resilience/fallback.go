// Package resilience keeps the generation stage answering when a model
// backend misbehaves.
//
// [LLMFallback] chains a primary model backend with optional fallbacks.
// Backends that keep failing are taken out of rotation for a cooldown and
// re-admitted through a few trial calls. Generation is the only pipeline
// stage that fails over across providers: the other stages degrade in place
// (keep the untranslated text, skip an audio chunk), while a lost generation
// turn has no substitute.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Kamalllx/evacuate/pkg/provider/llm"
)

// ErrAllBackendsFailed is returned by [LLMFallback.Complete] when no backend
// produced a response, whether by failing or by cooling off.
var ErrAllBackendsFailed = errors.New("resilience: all model backends failed")

// Config tunes how quickly a failing backend leaves and rejoins rotation.
// The zero value uses the defaults.
type Config struct {
	// FailLimit is the consecutive-failure count that takes a backend out
	// of rotation. Default: 5.
	FailLimit int

	// Cooldown is how long a backend stays out of rotation before trial
	// calls are admitted again. Default: 30s.
	Cooldown time.Duration

	// ProbeBudget is the number of trial calls a cooled-off backend must
	// answer successfully to rejoin rotation. Default: 3.
	ProbeBudget int
}

func (c Config) withDefaults() Config {
	if c.FailLimit <= 0 {
		c.FailLimit = 5
	}
	if c.Cooldown <= 0 {
		c.Cooldown = 30 * time.Second
	}
	if c.ProbeBudget <= 0 {
		c.ProbeBudget = 3
	}
	return c
}

// backend pairs one model provider with its health gate.
type backend struct {
	name     string
	provider llm.Provider
	gate     *breaker
}

// LLMFallback implements [llm.Provider] across a chain of model backends.
// Each Complete call goes to the first backend in rotation; on failure the
// next one is tried in registration order.
//
// Register all backends before the first call; the chain is fixed once
// serving starts.
type LLMFallback struct {
	cfg   Config
	chain []backend
}

// Compile-time interface assertion.
var _ llm.Provider = (*LLMFallback)(nil)

// NewLLMFallback creates an [LLMFallback] with primary as the preferred
// backend.
func NewLLMFallback(primary llm.Provider, primaryName string, cfg Config) *LLMFallback {
	cfg = cfg.withDefaults()
	return &LLMFallback{
		cfg: cfg,
		chain: []backend{{
			name:     primaryName,
			provider: primary,
			gate:     newBreaker(primaryName, cfg),
		}},
	}
}

// AddFallback appends a model backend to the chain. Fallbacks are tried in
// the order added, after the primary.
func (f *LLMFallback) AddFallback(name string, provider llm.Provider) {
	f.chain = append(f.chain, backend{
		name:     name,
		provider: provider,
		gate:     newBreaker(name, f.cfg),
	})
}

// Complete sends the request to the first backend in rotation and returns
// its response. Cooled-off backends are skipped; a failing backend passes
// the request to the next one in the chain.
func (f *LLMFallback) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	var lastErr error
	for i := range f.chain {
		b := &f.chain[i]
		if !b.gate.admit() {
			slog.Debug("model backend skipped while cooling off", "backend", b.name)
			continue
		}

		resp, err := b.provider.Complete(ctx, req)
		if err == nil {
			b.gate.succeed()
			return resp, nil
		}
		b.gate.fail()
		lastErr = err
		slog.Warn("model backend failed, trying next",
			"backend", b.name, "error", err)
	}

	if lastErr == nil {
		return nil, fmt.Errorf("%w: every backend cooling off", ErrAllBackendsFailed)
	}
	return nil, fmt.Errorf("%w: %v", ErrAllBackendsFailed, lastErr)
}
