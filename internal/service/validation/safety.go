// Package validation implements the post-dispatch verification pipeline:
// behavioral matching for conversational tasks, rule-mapped deterministic
// checks against the sandbox, helper-agent verification, and bounded
// interrogation of the primary agent.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ai-supervisor-foundry/foundry/internal/domain"
)

const maxPatternLength = 512

// SafePattern rejects patterns that are unreasonably large or contain a
// quantified group whose body is itself unbounded, such as (.*)+ or (a+)+.
// Those shapes are refused before any engine, including external ones like
// ripgrep, sees them.
func SafePattern(pattern string) error {
	if pattern == "" {
		return fmt.Errorf("empty pattern: %w", domain.ErrInvalidArgument)
	}
	if len(pattern) > maxPatternLength {
		return fmt.Errorf("pattern exceeds %d bytes: %w", maxPatternLength, domain.ErrInvalidArgument)
	}
	if hasNestedQuantifier(pattern) {
		return fmt.Errorf("pattern %q nests unbounded quantifiers: %w", pattern, domain.ErrInvalidArgument)
	}
	return nil
}

// CompileSafe runs the safety screen and then the real compiler.
func CompileSafe(pattern string) (*regexp.Regexp, error) {
	if err := SafePattern(pattern); err != nil {
		return nil, err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compile pattern %q: %w", pattern, domain.ErrInvalidArgument)
	}
	return re, nil
}

// hasNestedQuantifier scans for a group closed by an unbounded quantifier
// whose body also carries one. Escaped characters and character classes do
// not count as group structure.
func hasNestedQuantifier(pattern string) bool {
	type group struct{ unbounded bool }
	var stack []group
	inClass := false
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' {
			i++
			continue
		}
		if inClass {
			if r == ']' {
				inClass = false
			}
			continue
		}
		switch r {
		case '[':
			inClass = true
		case '(':
			stack = append(stack, group{})
		case ')':
			if len(stack) == 0 {
				continue
			}
			g := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if g.unbounded && followedByUnbounded(runes, i+1) {
				return true
			}
			// A quantified inner group makes the enclosing group unbounded
			// too, so (x(y+)z)* is treated the same as (y+)*.
			if len(stack) > 0 && (g.unbounded || followedByUnbounded(runes, i+1)) {
				stack[len(stack)-1].unbounded = true
			}
		case '*', '+':
			if len(stack) > 0 {
				stack[len(stack)-1].unbounded = true
			}
		case '{':
			if len(stack) > 0 && openEndedRepeat(runes, i) {
				stack[len(stack)-1].unbounded = true
			}
		}
	}
	return false
}

// followedByUnbounded reports whether position i starts an unbounded
// quantifier: *, +, or {n,}.
func followedByUnbounded(runes []rune, i int) bool {
	if i >= len(runes) {
		return false
	}
	switch runes[i] {
	case '*', '+':
		return true
	case '{':
		return openEndedRepeat(runes, i)
	}
	return false
}

// openEndedRepeat reports whether the brace expression at i has no upper
// bound, as in {2,}.
func openEndedRepeat(runes []rune, i int) bool {
	rest := string(runes[i:])
	end := strings.IndexRune(rest, '}')
	if end < 0 {
		return false
	}
	body := rest[1:end]
	return strings.HasSuffix(body, ",")
}
