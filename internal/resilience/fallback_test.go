package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Kamalllx/evacuate/internal/resilience"
	"github.com/Kamalllx/evacuate/pkg/provider/llm"
	llmmock "github.com/Kamalllx/evacuate/pkg/provider/llm/mock"
)

var errBackend = errors.New("backend exploded")

func ask(t *testing.T, f *resilience.LLMFallback) (*llm.CompletionResponse, error) {
	t.Helper()
	return f.Complete(context.Background(), llm.CompletionRequest{
		Messages: []llm.Message{{Role: "user", Content: "tell me about the Taj Mahal"}},
	})
}

// TestComplete_PrimaryServes verifies that a healthy primary answers and the
// fallback is never consulted.
func TestComplete_PrimaryServes(t *testing.T) {
	primary := &llmmock.Provider{CompleteContent: "from primary"}
	backup := &llmmock.Provider{CompleteContent: "from backup"}

	f := resilience.NewLLMFallback(primary, "primary", resilience.Config{})
	f.AddFallback("backup", backup)

	resp, err := ask(t, f)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "from primary" {
		t.Errorf("content = %q, want from primary", resp.Content)
	}
	if got := len(backup.Calls()); got != 0 {
		t.Errorf("backup called %d times, want 0", got)
	}
}

// TestComplete_FailoverOrder verifies that backends are tried in
// registration order until one answers.
func TestComplete_FailoverOrder(t *testing.T) {
	primary := &llmmock.Provider{CompleteErr: errBackend}
	first := &llmmock.Provider{CompleteErr: errBackend}
	second := &llmmock.Provider{CompleteContent: "rescued"}

	f := resilience.NewLLMFallback(primary, "primary", resilience.Config{})
	f.AddFallback("first", first)
	f.AddFallback("second", second)

	resp, err := ask(t, f)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "rescued" {
		t.Errorf("content = %q, want rescued", resp.Content)
	}
	for name, p := range map[string]*llmmock.Provider{"primary": primary, "first": first, "second": second} {
		if got := len(p.Calls()); got != 1 {
			t.Errorf("%s called %d times, want 1", name, got)
		}
	}
}

// TestComplete_AllBackendsFail verifies the sentinel when the whole chain
// errors.
func TestComplete_AllBackendsFail(t *testing.T) {
	primary := &llmmock.Provider{CompleteErr: errBackend}
	backup := &llmmock.Provider{CompleteErr: errBackend}

	f := resilience.NewLLMFallback(primary, "primary", resilience.Config{})
	f.AddFallback("backup", backup)

	if _, err := ask(t, f); !errors.Is(err, resilience.ErrAllBackendsFailed) {
		t.Fatalf("err = %v, want ErrAllBackendsFailed", err)
	}
}

// TestComplete_CoolingBackendSkipped verifies that a backend past its
// failure limit stops receiving calls while the fallback keeps serving.
func TestComplete_CoolingBackendSkipped(t *testing.T) {
	primary := &llmmock.Provider{CompleteErr: errBackend}
	backup := &llmmock.Provider{CompleteContent: "from backup"}

	f := resilience.NewLLMFallback(primary, "primary", resilience.Config{
		FailLimit: 2,
		Cooldown:  time.Hour,
	})
	f.AddFallback("backup", backup)

	for i := 0; i < 3; i++ {
		resp, err := ask(t, f)
		if err != nil {
			t.Fatalf("Complete #%d: %v", i+1, err)
		}
		if resp.Content != "from backup" {
			t.Errorf("Complete #%d content = %q", i+1, resp.Content)
		}
	}

	// Two failures hit the limit; the third turn never reached the primary.
	if got := len(primary.Calls()); got != 2 {
		t.Errorf("primary called %d times, want 2", got)
	}
}

// TestComplete_CooldownRecovery verifies that a cooled-off backend rejoins
// rotation after the cooldown once its trial call succeeds.
func TestComplete_CooldownRecovery(t *testing.T) {
	var primaryCalls int
	primary := &llmmock.Provider{
		CompleteFunc: func(llm.CompletionRequest) (*llm.CompletionResponse, error) {
			primaryCalls++
			if primaryCalls == 1 {
				return nil, errBackend
			}
			return &llm.CompletionResponse{Content: "primary again"}, nil
		},
	}
	backup := &llmmock.Provider{CompleteContent: "from backup"}

	f := resilience.NewLLMFallback(primary, "primary", resilience.Config{
		FailLimit:   1,
		Cooldown:    10 * time.Millisecond,
		ProbeBudget: 1,
	})
	f.AddFallback("backup", backup)

	// First turn trips the primary, backup serves.
	if resp, err := ask(t, f); err != nil || resp.Content != "from backup" {
		t.Fatalf("turn 1 = %v, %v", resp, err)
	}
	// Still cooling: primary must be skipped.
	if resp, err := ask(t, f); err != nil || resp.Content != "from backup" {
		t.Fatalf("turn 2 = %v, %v", resp, err)
	}
	if primaryCalls != 1 {
		t.Fatalf("primary called %d times during cooldown, want 1", primaryCalls)
	}

	time.Sleep(20 * time.Millisecond)

	// Trial call succeeds and the primary is back in rotation.
	for i := 3; i <= 4; i++ {
		resp, err := ask(t, f)
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if resp.Content != "primary again" {
			t.Errorf("turn %d content = %q, want primary again", i, resp.Content)
		}
	}
}

// TestComplete_TrialFailureRestartsCooldown verifies that a failing trial
// call puts the backend straight back out of rotation.
func TestComplete_TrialFailureRestartsCooldown(t *testing.T) {
	primary := &llmmock.Provider{CompleteErr: errBackend}
	backup := &llmmock.Provider{CompleteContent: "from backup"}

	f := resilience.NewLLMFallback(primary, "primary", resilience.Config{
		FailLimit:   1,
		Cooldown:    15 * time.Millisecond,
		ProbeBudget: 1,
	})
	f.AddFallback("backup", backup)

	ask(t, f) // trips the primary

	time.Sleep(25 * time.Millisecond)

	ask(t, f) // trial call fails, cooldown restarts
	if got := len(primary.Calls()); got != 2 {
		t.Fatalf("primary called %d times, want 2 (initial + trial)", got)
	}

	ask(t, f) // fresh cooldown: skipped again
	if got := len(primary.Calls()); got != 2 {
		t.Errorf("primary called %d times after restarted cooldown, want 2", got)
	}
}

// TestComplete_EverythingCooling verifies the sentinel when the only backend
// is out of rotation and nothing was even attempted.
func TestComplete_EverythingCooling(t *testing.T) {
	primary := &llmmock.Provider{CompleteErr: errBackend}

	f := resilience.NewLLMFallback(primary, "primary", resilience.Config{
		FailLimit: 1,
		Cooldown:  time.Hour,
	})

	ask(t, f) // trips the primary

	if _, err := ask(t, f); !errors.Is(err, resilience.ErrAllBackendsFailed) {
		t.Fatalf("err = %v, want ErrAllBackendsFailed", err)
	}
	if got := len(primary.Calls()); got != 1 {
		t.Errorf("primary called %d times, want 1", got)
	}
}
