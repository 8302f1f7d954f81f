package query

import (
	"strings"
)

// FilterKey names the record field a structured filter targets.
type FilterKey string

const (
	KeyPrimitiveFMA FilterKey = "p_fma"
	KeyCompositeFMA FilterKey = "c_fma"
	KeyName         FilterKey = "name"
)

// MatchMode is how a structured filter compares its value.
type MatchMode string

const (
	ModeExact    MatchMode = "exact"
	ModeStarts   MatchMode = "starts"
	ModeContains MatchMode = "contains"
)

func (m MatchMode) operator() string {
	switch m {
	case ModeExact:
		return "="
	case ModeStarts:
		return "^="
	default:
		return ":"
	}
}

// Filter is one key/operator/value clause, e.g. p_fma=1234.
type Filter struct {
	Key   FilterKey
	Mode  MatchMode
	Value string
}

func (f Filter) String() string {
	return string(f.Key) + f.Mode.operator() + quoteIfSpaced(f.Value)
}

// Query is the parsed form of a search string.
//
// A non-nil Regex replaces Terms: the two are never consulted for the same
// evaluation. Filters always apply.
type Query struct {
	Terms   []string
	Filters []Filter
	Regex   *Pattern
}

// IsZero reports whether q matches every record.
func (q Query) IsZero() bool {
	return len(q.Terms) == 0 && len(q.Filters) == 0 && q.Regex == nil
}

// String renders q back in query syntax.
func (q Query) String() string {
	if q.Regex != nil {
		return q.Regex.String()
	}
	parts := make([]string, 0, len(q.Filters)+len(q.Terms))
	for _, f := range q.Filters {
		parts = append(parts, f.String())
	}
	for _, t := range q.Terms {
		parts = append(parts, quoteIfSpaced(t))
	}
	return strings.Join(parts, " ")
}

func quoteIfSpaced(s string) string {
	if strings.ContainsAny(s, " \t") {
		return `"` + s + `"`
	}
	return s
}
