package query

import (
	"regexp"
	"strings"
)

var (
	tokenPattern      = regexp.MustCompile(`"[^"]+"|\S+`)
	structuredPattern = regexp.MustCompile(`(?i)^(p_fma|c_fma|name|n)(=|\^=|\*=|:)(.+)$`)
)

// Parse turns a raw search string into a Query. It never fails: a
// /pattern/flags string that does not compile is read as ordinary tokens.
func Parse(raw string) Query {
	q := strings.TrimSpace(raw)
	if q == "" {
		return Query{}
	}

	if strings.HasPrefix(q, "/") {
		if last := strings.LastIndex(q, "/"); last > 0 {
			flags := q[last+1:]
			if flags == "" {
				flags = "i"
			}
			if p, err := CompilePattern(q[1:last], flags); err == nil {
				return Query{Regex: p}
			}
		}
	}

	var out Query
	for _, tok := range tokenize(q) {
		if f, ok, matched := parseStructured(tok); matched {
			if ok {
				out.Filters = append(out.Filters, f)
			}
			continue
		}
		if f, ok, matched := parseLegacy(tok); matched {
			if ok {
				out.Filters = append(out.Filters, f)
			}
			continue
		}
		out.Terms = append(out.Terms, strings.ToLower(tok))
	}
	return out
}

// tokenize splits on whitespace, keeping "quoted runs" as one token with the
// quotes removed.
func tokenize(q string) []string {
	raw := tokenPattern.FindAllString(q, -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimPrefix(t, `"`)
		t = strings.TrimSuffix(t, `"`)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// parseStructured handles key(op)value tokens. matched reports whether the
// token had that shape; ok is false when the value was empty.
func parseStructured(tok string) (f Filter, ok, matched bool) {
	m := structuredPattern.FindStringSubmatch(tok)
	if m == nil {
		return Filter{}, false, false
	}
	val := strings.TrimSpace(m[3])
	if val == "" {
		return Filter{}, false, true
	}

	var key FilterKey
	switch strings.ToLower(m[1]) {
	case "p_fma":
		key = KeyPrimitiveFMA
	case "c_fma":
		key = KeyCompositeFMA
	default:
		key = KeyName
	}

	mode := ModeContains
	switch m[2] {
	case "=":
		mode = ModeExact
	case "^=":
		mode = ModeStarts
	}
	return Filter{Key: key, Mode: mode, Value: val}, true, true
}

// parseLegacy handles the older P_FMA:/C_FMA: prefixes. The prefix is case
// sensitive.
func parseLegacy(tok string) (f Filter, ok, matched bool) {
	var key FilterKey
	switch {
	case strings.HasPrefix(tok, "P_FMA:"):
		key = KeyPrimitiveFMA
	case strings.HasPrefix(tok, "C_FMA:"):
		key = KeyCompositeFMA
	default:
		return Filter{}, false, false
	}
	rest := tok[len("P_FMA:"):]
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		rest = rest[:i]
	}
	val := strings.TrimSpace(rest)
	if val == "" {
		return Filter{}, false, true
	}
	return Filter{Key: key, Mode: ModeContains, Value: val}, true, true
}
