package history_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/Kamalllx/evacuate/internal/history"
)

// TestAppendAndGet verifies basic recording and chronological ordering.
func TestAppendAndGet(t *testing.T) {
	s := history.NewStore()

	s.Append("sess-1", "hello", true, "en-IN")
	s.Append("sess-1", "hi, how can I help?", false, "en-IN")

	turns := s.Get("sess-1")
	if len(turns) != 2 {
		t.Fatalf("Get returned %d turns, want 2", len(turns))
	}
	if !turns[0].IsUser || turns[0].Text != "hello" {
		t.Errorf("turn[0] = %+v, want user 'hello'", turns[0])
	}
	if turns[1].IsUser || turns[1].Text != "hi, how can I help?" {
		t.Errorf("turn[1] = %+v, want assistant reply", turns[1])
	}
	if turns[0].Language != "en-IN" {
		t.Errorf("turn[0].Language = %q, want en-IN", turns[0].Language)
	}
}

// TestGet_UnknownSession verifies that unknown keys yield an empty slice,
// never an error or nil panic downstream.
func TestGet_UnknownSession(t *testing.T) {
	s := history.NewStore()
	if turns := s.Get("nope"); len(turns) != 0 {
		t.Errorf("Get(unknown) returned %d turns, want 0", len(turns))
	}
	if text := s.AsText("nope"); text != "" {
		t.Errorf("AsText(unknown) = %q, want empty", text)
	}
}

// TestEviction_FIFO verifies the cap invariant: the length never exceeds the
// cap and the oldest turns are the ones dropped.
func TestEviction_FIFO(t *testing.T) {
	s := history.NewStore()

	for i := 0; i < history.DefaultMaxTurns+7; i++ {
		s.Append("sess-1", fmt.Sprintf("msg-%d", i), i%2 == 0, "en-IN")
		if got := s.Len("sess-1"); got > history.DefaultMaxTurns {
			t.Fatalf("after %d appends, Len = %d exceeds cap %d", i+1, got, history.DefaultMaxTurns)
		}
	}

	turns := s.Get("sess-1")
	if len(turns) != history.DefaultMaxTurns {
		t.Fatalf("Len = %d, want %d", len(turns), history.DefaultMaxTurns)
	}
	// The first 7 messages must have been evicted.
	if turns[0].Text != "msg-7" {
		t.Errorf("oldest surviving turn = %q, want msg-7", turns[0].Text)
	}
	if last := turns[len(turns)-1].Text; last != fmt.Sprintf("msg-%d", history.DefaultMaxTurns+6) {
		t.Errorf("newest turn = %q, want msg-%d", last, history.DefaultMaxTurns+6)
	}
}

// TestAsText verifies the role-labelled transcript rendering.
func TestAsText(t *testing.T) {
	s := history.NewStore()
	s.Append("sess-1", "tell me about the Colosseum", true, "en-IN")
	s.Append("sess-1", "the Colosseum is in Rome", false, "en-IN")

	got := s.AsText("sess-1")
	want := "User: tell me about the Colosseum\nTravelGuide: the Colosseum is in Rome"
	if got != want {
		t.Errorf("AsText = %q, want %q", got, want)
	}
}

// TestReset_IsSessionScoped verifies that resetting one session leaves
// others untouched.
func TestReset_IsSessionScoped(t *testing.T) {
	s := history.NewStore()
	s.Append("a", "one", true, "en-IN")
	s.Append("b", "two", true, "hi-IN")

	s.Reset("a")

	if s.Len("a") != 0 {
		t.Errorf("session a has %d turns after reset, want 0", s.Len("a"))
	}
	if s.Len("b") != 1 {
		t.Errorf("session b has %d turns, want 1", s.Len("b"))
	}
}

// TestGet_ReturnsCopy verifies that mutating the returned slice does not
// corrupt the store.
func TestGet_ReturnsCopy(t *testing.T) {
	s := history.NewStore()
	s.Append("sess-1", "original", true, "en-IN")

	turns := s.Get("sess-1")
	turns[0].Text = "mutated"

	if got := s.Get("sess-1")[0].Text; got != "original" {
		t.Errorf("store turn text = %q after caller mutation, want original", got)
	}
	if !strings.Contains(s.AsText("sess-1"), "original") {
		t.Error("AsText no longer contains the original text")
	}
}
