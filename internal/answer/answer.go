// Package answer normalises raw language-model output into the structured
// travel answer the client renders.
//
// The model is asked for a JSON object with five fixed fields, but real
// responses arrive in several shapes: a fenced ```json block, a bare JSON
// object, or plain prose when the model ignores the format instructions.
// [Parse] accepts all of them and never fails; unparseable output is carried
// through verbatim as a raw fallback rather than rejected.
package answer

import (
	"encoding/json"
	"strings"
)

// Fields holds the five structured sections of a travel answer. Absent
// sections are empty strings, never omitted keys.
type Fields struct {
	// Result is the direct answer to the user's question.
	Result string `json:"result"`

	// HistoricalContext covers historical background, when relevant.
	HistoricalContext string `json:"historical_context"`

	// CulturalInsights covers cultural context and significance.
	CulturalInsights string `json:"cultural_insights"`

	// TravelTips holds practical visiting advice.
	TravelTips string `json:"travel_tips"`

	// AdditionalInfo holds anything else worth mentioning.
	AdditionalInfo string `json:"additional_info"`
}

// Answer is the outcome of normalising model output: either the parsed
// structured fields, or the raw text when structure could not be recovered.
// Exactly one of the two representations is meaningful, selected by
// Structured.
type Answer struct {
	// Structured is true when Fields holds parsed content.
	Structured bool

	// Fields holds the parsed sections. Valid only when Structured is true.
	Fields Fields

	// Raw is the unmodified model output. Valid only when Structured is
	// false.
	Raw string
}

// Parse normalises raw model output. It extracts a JSON payload from a
// fenced ```json block or a bare brace-delimited object and decodes the five
// answer fields, defaulting missing ones to empty strings. Output carrying
// no decodable JSON object comes back as a raw-fallback Answer. Parse is
// total and never returns an error.
func Parse(raw string) Answer {
	payload, ok := jsonPayload(raw)
	if !ok {
		return Answer{Raw: raw}
	}

	var f Fields
	if err := json.Unmarshal([]byte(payload), &f); err != nil {
		return Answer{Raw: raw}
	}
	return Answer{Structured: true, Fields: f}
}

// Render produces the client-facing text. Structured answers render as the
// result text followed by bold-labelled sections in fixed order, each
// separated by a blank line; empty sections are skipped. Raw-fallback
// answers render as the trimmed raw text. The output never ends in trailing
// whitespace.
func (a Answer) Render() string {
	if !a.Structured {
		return strings.TrimSpace(a.Raw)
	}

	var sb strings.Builder
	sb.WriteString(cleanResult(a.Fields.Result))
	sb.WriteString("\n\n")

	if a.Fields.HistoricalContext != "" {
		sb.WriteString("**Historical Context:** ")
		sb.WriteString(a.Fields.HistoricalContext)
		sb.WriteString("\n\n")
	}
	if a.Fields.CulturalInsights != "" {
		sb.WriteString("**Cultural Insights:** ")
		sb.WriteString(a.Fields.CulturalInsights)
		sb.WriteString("\n\n")
	}
	if a.Fields.TravelTips != "" {
		sb.WriteString("**Travel Tips:** ")
		sb.WriteString(a.Fields.TravelTips)
		sb.WriteString("\n\n")
	}
	if a.Fields.AdditionalInfo != "" {
		sb.WriteString("**Additional Information:**\n")
		sb.WriteString(a.Fields.AdditionalInfo)
	}

	return strings.TrimSpace(sb.String())
}

// jsonPayload locates the JSON object inside raw model output. It handles a
// fenced ```json block anywhere in the text and a bare object spanning the
// whole (trimmed) text. Returns ok=false when neither shape is present.
func jsonPayload(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)

	if start := strings.Index(trimmed, "```json"); start >= 0 {
		body := trimmed[start+len("```json"):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body), true
	}

	if strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}") {
		return trimmed, true
	}
	return "", false
}

// cleanResult strips stray JSON wrapping the model sometimes nests inside
// the result field itself: a ```json fence, or a brace-delimited object
// whose own "result" key carries the text.
func cleanResult(result string) string {
	if strings.HasPrefix(result, "```json") {
		result = strings.ReplaceAll(result, "```json", "")
		result = strings.ReplaceAll(result, "```", "")
		return strings.TrimSpace(result)
	}
	if strings.HasPrefix(result, "{") && strings.HasSuffix(result, "}") {
		var nested struct {
			Result string `json:"result"`
		}
		if err := json.Unmarshal([]byte(result), &nested); err == nil && nested.Result != "" {
			return nested.Result
		}
		return strings.TrimSpace(strings.Trim(result, "{}"))
	}
	return result
}
