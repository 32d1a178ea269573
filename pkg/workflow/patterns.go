package workflow

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter patterns use the hosted platform's dialect, which is neither POSIX
// glob nor gitignore:
//
//	*   zero or more characters, not crossing /
//	**  zero or more of any character
//	?   zero or one of the preceding character
//	+   one or more of the preceding character
//	[]  one character from the listed set or ranges
//	!   (at the start of a pattern) negates it
//
// Patterns in a list are evaluated in order and the last match wins: a
// negative pattern can carve paths out of an earlier positive match, and a
// later positive pattern can add them back.

type filterPattern struct {
	negate bool
	re     *regexp.Regexp
}

// compileFilterPatterns compiles a pattern list for repeated matching.
func compileFilterPatterns(patterns []string) ([]filterPattern, error) {
	compiled := make([]filterPattern, 0, len(patterns))
	for _, raw := range patterns {
		pattern, negate := strings.CutPrefix(raw, "!")
		expr, err := filterPatternToRegexp(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", raw, err)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern %q: %w", raw, err)
		}
		compiled = append(compiled, filterPattern{negate: negate, re: re})
	}
	return compiled, nil
}

// MatchFilter reports whether value matches the ordered pattern list.
// A negative pattern with no preceding positive match matches nothing.
func MatchFilter(patterns []string, value string) (bool, error) {
	compiled, err := compileFilterPatterns(patterns)
	if err != nil {
		return false, err
	}
	return matchCompiled(compiled, value), nil
}

func matchCompiled(patterns []filterPattern, value string) bool {
	matched := false
	for _, p := range patterns {
		if !p.re.MatchString(value) {
			continue
		}
		matched = !p.negate
	}
	return matched
}

// filterPatternToRegexp translates one filter pattern to an anchored regexp.
func filterPatternToRegexp(pattern string) (string, error) {
	var b strings.Builder
	b.WriteString("^")

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch c := runes[i]; c {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			// Quantifier on the preceding character, as upstream defines it.
			b.WriteString("?")
		case '+':
			b.WriteString("+")
		case '[':
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == ']' && j > i+1 {
					end = j
					break
				}
			}
			if end == -1 {
				return "", fmt.Errorf("unterminated character class")
			}
			b.WriteString(string(runes[i : end+1]))
			i = end
		case '\\':
			if i+1 >= len(runes) {
				return "", fmt.Errorf("trailing backslash")
			}
			b.WriteString(regexp.QuoteMeta(string(runes[i+1])))
			i++
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString("$")
	return b.String(), nil
}
