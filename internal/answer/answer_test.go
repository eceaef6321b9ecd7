package answer_test

import (
	"strings"
	"testing"

	"github.com/Kamalllx/evacuate/internal/answer"
)

// TestParse_FencedJSON verifies parsing of the fenced block shape the model
// usually produces.
func TestParse_FencedJSON(t *testing.T) {
	raw := "Here you go:\n```json\n" +
		`{"result": "The Taj Mahal is in Agra.", "historical_context": "Built in 1632.", "travel_tips": "Go early."}` +
		"\n```"

	a := answer.Parse(raw)
	if !a.Structured {
		t.Fatalf("Parse returned raw fallback for fenced JSON: %q", a.Raw)
	}
	if a.Fields.Result != "The Taj Mahal is in Agra." {
		t.Errorf("Result = %q", a.Fields.Result)
	}
	if a.Fields.HistoricalContext != "Built in 1632." {
		t.Errorf("HistoricalContext = %q", a.Fields.HistoricalContext)
	}
	// Missing fields default to empty, never cause failure.
	if a.Fields.CulturalInsights != "" || a.Fields.AdditionalInfo != "" {
		t.Errorf("missing fields not empty: %+v", a.Fields)
	}
}

// TestParse_BareObject verifies parsing when the whole response is one JSON
// object with no fence.
func TestParse_BareObject(t *testing.T) {
	a := answer.Parse(`{"result": "Open 9 to 5.", "travel_tips": "Book online."}`)
	if !a.Structured || a.Fields.Result != "Open 9 to 5." {
		t.Errorf("Parse = %+v, want structured answer", a)
	}
}

// TestParse_ProseFallback verifies that plain prose survives untouched as a
// raw fallback.
func TestParse_ProseFallback(t *testing.T) {
	const prose = "The Eiffel Tower was built for the 1889 World's Fair."
	a := answer.Parse(prose)
	if a.Structured {
		t.Fatalf("Parse treated prose as structured: %+v", a.Fields)
	}
	if a.Raw != prose {
		t.Errorf("Raw = %q, want input preserved verbatim", a.Raw)
	}
	if a.Render() != prose {
		t.Errorf("Render = %q, want raw text", a.Render())
	}
}

// TestParse_MalformedJSON verifies the fallback on syntactically broken JSON.
func TestParse_MalformedJSON(t *testing.T) {
	raw := "```json\n{\"result\": \"truncated\n```"
	a := answer.Parse(raw)
	if a.Structured {
		t.Fatal("Parse accepted malformed JSON")
	}
	if a.Raw != raw {
		t.Errorf("Raw = %q, want original input", a.Raw)
	}
}

// TestRender_SectionOrder verifies fixed ordering and blank-line separation
// of the rendered sections.
func TestRender_SectionOrder(t *testing.T) {
	a := answer.Answer{
		Structured: true,
		Fields: answer.Fields{
			Result:            "It is an amphitheatre in Rome.",
			HistoricalContext: "Completed in AD 80.",
			CulturalInsights:  "Symbol of Imperial Rome.",
			TravelTips:        "Buy tickets in advance.",
			AdditionalInfo:    "Closed on some holidays.",
		},
	}

	got := a.Render()
	want := "It is an amphitheatre in Rome.\n\n" +
		"**Historical Context:** Completed in AD 80.\n\n" +
		"**Cultural Insights:** Symbol of Imperial Rome.\n\n" +
		"**Travel Tips:** Buy tickets in advance.\n\n" +
		"**Additional Information:**\nClosed on some holidays."
	if got != want {
		t.Errorf("Render =\n%q\nwant\n%q", got, want)
	}
}

// TestRender_SkipsEmptySections verifies that empty fields produce no label
// and no stray separators.
func TestRender_SkipsEmptySections(t *testing.T) {
	a := answer.Answer{
		Structured: true,
		Fields: answer.Fields{
			Result:     "Short answer.",
			TravelTips: "One tip.",
		},
	}

	got := a.Render()
	if got != "Short answer.\n\n**Travel Tips:** One tip." {
		t.Errorf("Render = %q", got)
	}
	if strings.Contains(got, "Historical Context") {
		t.Error("empty section rendered a label")
	}
	if strings.HasSuffix(got, "\n") {
		t.Error("Render output ends in whitespace")
	}
}

// TestRender_Idempotent verifies that rendering is stable: a fully populated
// answer renders the same text every time, and re-normalising that text
// reproduces it unchanged.
func TestRender_Idempotent(t *testing.T) {
	a := answer.Answer{
		Structured: true,
		Fields: answer.Fields{
			Result:            "The Taj Mahal is in Agra.",
			HistoricalContext: "Built by Shah Jahan, completed in 1653.",
			CulturalInsights:  "A symbol of eternal love.",
			TravelTips:        "Visit at sunrise.",
			AdditionalInfo:    "Closed on Fridays.",
		},
	}

	first := a.Render()
	if second := a.Render(); second != first {
		t.Errorf("second Render = %q, want %q", second, first)
	}

	// The rendered prose carries no JSON, so re-parsing yields a raw
	// fallback that renders back to the identical text.
	reparsed := answer.Parse(first)
	if reparsed.Structured {
		t.Fatal("rendered prose re-parsed as structured")
	}
	if got := reparsed.Render(); got != first {
		t.Errorf("Parse(Render).Render = %q, want %q", got, first)
	}
}

// TestRender_UnwrapsNestedResult verifies cleanup of JSON wrapping nested
// inside the result field itself.
func TestRender_UnwrapsNestedResult(t *testing.T) {
	cases := []struct {
		name   string
		result string
		want   string
	}{
		{"fenced", "```json\nA direct answer.\n```", "A direct answer."},
		{"nested object", `{"result": "A direct answer."}`, "A direct answer."},
		{"broken braces", "{not actually json}", "not actually json"},
	}
	for _, tc := range cases {
		a := answer.Answer{Structured: true, Fields: answer.Fields{Result: tc.result}}
		if got := a.Render(); got != tc.want {
			t.Errorf("%s: Render = %q, want %q", tc.name, got, tc.want)
		}
	}
}
