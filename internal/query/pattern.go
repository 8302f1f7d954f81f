package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

// matchTimeout bounds a single regex evaluation against one name.
const matchTimeout = 250 * time.Millisecond

// Pattern is a compiled /source/flags expression with script-style
// (ECMAScript) semantics.
type Pattern struct {
	Source string
	Flags  string

	re *regexp2.Regexp
}

// CompilePattern compiles source with the given flag letters.
//
// Supported flags: i (ignore case), m (multiline), s (dot matches newline),
// u (accepted), g, y and d (accepted, no effect on a yes/no match).
// Unknown or repeated flags are an error.
func CompilePattern(source, flags string) (*Pattern, error) {
	opts := regexp2.RegexOptions(regexp2.ECMAScript)
	seen := make(map[rune]bool, len(flags))
	for _, f := range flags {
		if seen[f] {
			return nil, fmt.Errorf("duplicate regex flag %q", f)
		}
		seen[f] = true
		switch f {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			// regexp2 does not combine Singleline with ECMAScript.
			opts = opts&^regexp2.ECMAScript | regexp2.Singleline
		case 'u', 'g', 'y', 'd':
		default:
			return nil, fmt.Errorf("invalid regex flag %q", f)
		}
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, err
	}
	re.MatchTimeout = matchTimeout
	return &Pattern{Source: source, Flags: flags, re: re}, nil
}

// MatchString reports whether s contains a match. Evaluation errors
// (timeouts) count as no match.
func (p *Pattern) MatchString(s string) bool {
	if p == nil || p.re == nil {
		return false
	}
	ok, err := p.re.MatchString(s)
	return err == nil && ok
}

// Equal compares patterns by source and flags.
func (p *Pattern) Equal(o *Pattern) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Source == o.Source && p.Flags == o.Flags
}

func (p *Pattern) String() string {
	var b strings.Builder
	b.WriteByte('/')
	b.WriteString(p.Source)
	b.WriteByte('/')
	b.WriteString(p.Flags)
	return b.String()
}
