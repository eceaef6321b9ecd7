// Package textchunk implements sentence-boundary-aware text splitting.
//
// Upstream services impose hard per-request size limits (the translation API
// accepts ~1000 characters, the speech synthesis API ~500). Split breaks a
// long text into chunks that respect such a limit while preferring to cut on
// sentence boundaries, so that each chunk remains natural-sounding when
// translated or spoken independently.
//
// One algorithm serves every call site; the limit is a parameter, not a
// variant. All functions are pure and safe for concurrent use.
package textchunk

import "strings"

// Split breaks text into ordered chunks of at most limit characters each,
// cutting on sentence boundaries ('.', '!', or '?' followed by whitespace).
//
// Sentences are greedily accumulated into the current chunk while the total
// length, counting one joining space per boundary, stays within limit. A
// single sentence longer than limit is emitted whole as an oversized chunk —
// never truncated mid-word.
//
// Empty or all-whitespace input yields no chunks. A non-positive limit
// yields the trimmed input as one chunk. Chunk order follows input order and
// no sentence content is dropped.
func Split(text string, limit int) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if limit <= 0 || len(trimmed) <= limit {
		return []string{trimmed}
	}

	var chunks []string
	var current strings.Builder

	for _, sentence := range Sentences(trimmed) {
		if current.Len() == 0 {
			current.WriteString(sentence)
			continue
		}
		// +1 accounts for the joining space.
		if current.Len()+1+len(sentence) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(sentence)
			continue
		}
		current.WriteByte(' ')
		current.WriteString(sentence)
	}

	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// Sentences segments text into sentences. A sentence ends at the first '.',
// '!', or '?' that is immediately followed by a whitespace character; the
// terminating punctuation stays with its sentence. Text after the last
// boundary is returned as a final trailing sentence.
//
// Whitespace between sentences is consumed, so rejoining the result with
// single spaces normalises inter-sentence whitespace but loses no content.
func Sentences(text string) []string {
	var out []string
	rest := text
	for {
		idx := sentenceBoundary(rest)
		if idx < 0 {
			if s := strings.TrimSpace(rest); s != "" {
				out = append(out, s)
			}
			return out
		}
		if s := strings.TrimSpace(rest[:idx+1]); s != "" {
			out = append(out, s)
		}
		rest = strings.TrimLeft(rest[idx+1:], " \t\n\r")
	}
}

// sentenceBoundary returns the index of the first '.', '!', or '?' character
// that is immediately followed by a whitespace character (' ', '\n', '\r',
// or '\t'). Returns -1 if no such boundary exists in s.
func sentenceBoundary(s string) int {
	for i := 0; i < len(s)-1; i++ {
		switch s[i] {
		case '.', '!', '?':
			switch s[i+1] {
			case ' ', '\n', '\r', '\t':
				return i
			}
		}
	}
	return -1
}
