package resilience

import (
	"log/slog"
	"sync"
	"time"
)

// breaker tracks the recent health of one model backend for [LLMFallback].
// After too many consecutive failures the backend cools off: calls are
// refused until the cooldown elapses, then a small budget of trial calls
// decides whether it rejoins the rotation.
type breaker struct {
	label       string
	failLimit   int
	cooldown    time.Duration
	probeBudget int

	mu           sync.Mutex
	fails        int       // consecutive failures while serving
	coolingSince time.Time // zero while serving
	probes       int       // trial calls admitted since the cooldown elapsed
	probeWins    int
}

func newBreaker(label string, cfg Config) *breaker {
	return &breaker{
		label:       label,
		failLimit:   cfg.FailLimit,
		cooldown:    cfg.Cooldown,
		probeBudget: cfg.ProbeBudget,
	}
}

// admit reports whether a call may go to this backend. While cooling off it
// refuses everything until the cooldown elapses, then admits at most
// probeBudget trial calls.
func (b *breaker) admit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.coolingSince.IsZero() {
		return true
	}
	if time.Since(b.coolingSince) < b.cooldown {
		return false
	}
	if b.probes >= b.probeBudget {
		return false
	}
	b.probes++
	return true
}

// succeed records a successful call. Spending the whole trial budget on
// successes ends the cooloff.
func (b *breaker) succeed() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.coolingSince.IsZero() {
		b.fails = 0
		return
	}
	b.probeWins++
	if b.probeWins >= b.probeBudget {
		b.coolingSince = time.Time{}
		b.fails, b.probes, b.probeWins = 0, 0, 0
		slog.Info("model backend recovered", "backend", b.label)
	}
}

// fail records a failed call. A trial failure restarts the cooldown; hitting
// failLimit consecutive failures while serving starts one.
func (b *breaker) fail() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.coolingSince.IsZero() {
		b.coolingSince = time.Now()
		b.probes, b.probeWins = 0, 0
		slog.Warn("model backend still failing, cooldown restarted",
			"backend", b.label)
		return
	}

	b.fails++
	if b.fails >= b.failLimit {
		b.coolingSince = time.Now()
		slog.Warn("model backend cooling off",
			"backend", b.label, "consecutive_failures", b.fails)
	}
}
