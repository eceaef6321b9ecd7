package textchunk_test

import (
	"strings"
	"testing"

	"github.com/Kamalllx/evacuate/internal/textchunk"
)

// TestSplit_Empty verifies that empty and all-whitespace inputs produce no
// chunks.
func TestSplit_Empty(t *testing.T) {
	if got := textchunk.Split("", 100); got != nil {
		t.Errorf("Split(\"\") = %v, want nil", got)
	}
	if got := textchunk.Split("   \n\t ", 100); got != nil {
		t.Errorf("Split(whitespace) = %v, want nil", got)
	}
}

// TestSplit_ShortInput verifies that input within the limit comes back as a
// single chunk, untouched apart from outer whitespace.
func TestSplit_ShortInput(t *testing.T) {
	got := textchunk.Split("  Hello there. How are you?  ", 100)
	if len(got) != 1 {
		t.Fatalf("Split returned %d chunks, want 1: %v", len(got), got)
	}
	if got[0] != "Hello there. How are you?" {
		t.Errorf("chunk = %q, want trimmed input", got[0])
	}
}

// TestSplit_SentenceBoundaries verifies greedy accumulation: sentences pack
// into a chunk until the next one would overflow the limit.
func TestSplit_SentenceBoundaries(t *testing.T) {
	text := "One two three. Four five six! Seven eight nine? Ten eleven twelve."
	got := textchunk.Split(text, 35)

	if len(got) != 3 {
		t.Fatalf("Split returned %d chunks, want 3: %#v", len(got), got)
	}
	want := []string{
		"One two three. Four five six!",
		"Seven eight nine?",
		"Ten eleven twelve.",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestSplit_OversizedSentence verifies that a single sentence longer than the
// limit is emitted whole rather than truncated.
func TestSplit_OversizedSentence(t *testing.T) {
	long := strings.Repeat("word ", 40) + "end."
	text := "Short one. " + long + " Short two."
	got := textchunk.Split(text, 50)

	found := false
	for _, c := range got {
		if len(c) > 50 {
			if c != strings.TrimSpace(long) {
				t.Errorf("oversized chunk %q is not the long sentence", c)
			}
			found = true
		}
	}
	if !found {
		t.Error("no oversized chunk emitted for a sentence exceeding the limit")
	}
}

// TestSplit_LengthInvariant checks the limit law over a range of inputs:
// every chunk is within the limit unless it is a single oversized sentence.
func TestSplit_LengthInvariant(t *testing.T) {
	inputs := []string{
		"A. B. C. D. E. F. G. H.",
		"The Taj Mahal is an ivory-white marble mausoleum. It was commissioned in 1632 by Shah Jahan. The tomb is the centrepiece of a 17-hectare complex.",
		"No terminal punctuation here at all just a stream of words going on and on",
		"Ends abruptly! Then more? And more. Finally",
	}
	for _, limit := range []int{10, 30, 80, 450, 900} {
		for _, in := range inputs {
			for i, c := range textchunk.Split(in, limit) {
				if len(c) <= limit {
					continue
				}
				// Oversized chunks must be exactly one sentence.
				if n := len(textchunk.Sentences(c)); n != 1 {
					t.Errorf("limit=%d chunk[%d] len=%d spans %d sentences: %q", limit, i, len(c), n, c)
				}
			}
		}
	}
}

// TestSplit_Lossless verifies that rejoining chunks reproduces the input's
// sentence content with only inter-sentence whitespace normalised.
func TestSplit_Lossless(t *testing.T) {
	text := "First sentence here. Second one follows!  Third,\nafter a newline? Tail without terminator"
	got := textchunk.Split(text, 25)

	rejoined := strings.Join(got, " ")
	normalised := strings.Join(textchunk.Sentences(text), " ")
	if rejoined != normalised {
		t.Errorf("rejoined chunks = %q, want %q", rejoined, normalised)
	}
}

// TestSentences verifies boundary detection: punctuation must be followed by
// whitespace to terminate a sentence, so decimals and abbreviations without
// trailing space stay intact.
func TestSentences(t *testing.T) {
	got := textchunk.Sentences("Entry costs 3.50 euros. Arrive early! Why? Because queues")
	want := []string{"Entry costs 3.50 euros.", "Arrive early!", "Why?", "Because queues"}
	if len(got) != len(want) {
		t.Fatalf("Sentences returned %d items, want %d: %#v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
