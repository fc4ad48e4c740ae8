// Package textx provides small text utilities shared by the provider and
// validation layers.
package textx

import (
	"regexp"
	"strings"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]`)

// Clean strips ANSI escape sequences and control characters except
// tab/newline/CR, then trims surrounding whitespace. Agent CLIs decorate
// stdout with colors and spinner frames that would otherwise pollute prompt
// transcripts and validation evidence.
func Clean(s string) string {
	s = ansiSeq.ReplaceAllString(s, "")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Truncate caps s at limit bytes and marks the cut. Zero or negative limit
// means unbounded.
func Truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	return s[:limit] + "\n[truncated]"
}
