package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kamusis/primview/internal/record"
)

// Dataset is the read side of a record store.
type Dataset interface {
	Len() int
	At(i int) record.Record
}

// View is an ordered list of dataset indices. Order always follows the
// dataset; evaluation never reorders.
type View []int

// All returns the identity view over n records.
func All(n int) View {
	v := make(View, n)
	for i := range v {
		v[i] = i
	}
	return v
}

// Evaluate applies q to every record of ds and returns the surviving
// indices together with the terms to highlight.
func Evaluate(q Query, ds Dataset) (View, []string) {
	e := newEvaluator(q)
	out := make(View, 0)
	for i := 0; i < ds.Len(); i++ {
		if e.match(ds.At(i)) {
			out = append(out, i)
		}
	}
	return out, q.Terms
}

// Match reports whether a single record satisfies q.
func Match(q Query, r record.Record) bool {
	return newEvaluator(q).match(r)
}

type evaluator struct {
	q      Query
	lower  cases.Caser
	terms  []string
	values []string
}

func newEvaluator(q Query) *evaluator {
	e := &evaluator{q: q, lower: lowerCaser()}
	e.terms = make([]string, len(q.Terms))
	for i, t := range q.Terms {
		e.terms[i] = e.lower.String(t)
	}
	e.values = make([]string, len(q.Filters))
	for i, f := range q.Filters {
		if f.Key == KeyName {
			e.values[i] = e.lower.String(f.Value)
		} else {
			e.values[i] = f.Value
		}
	}
	return e
}

func (e *evaluator) match(r record.Record) bool {
	if !e.matchText(r.PrimitiveName) {
		return false
	}
	var lowerName string
	for i, f := range e.q.Filters {
		var source string
		switch f.Key {
		case KeyPrimitiveFMA:
			source = r.PrimitiveID
		case KeyCompositeFMA:
			source = r.CompositeID
		case KeyName:
			if lowerName == "" {
				lowerName = e.lower.String(r.PrimitiveName)
			}
			source = lowerName
		}
		if !compare(source, e.values[i], f.Mode) {
			return false
		}
	}
	return true
}

func (e *evaluator) matchText(name string) bool {
	if e.q.Regex != nil {
		return e.q.Regex.MatchString(name)
	}
	if len(e.terms) == 0 {
		return true
	}
	n := e.lower.String(name)
	for _, t := range e.terms {
		if !strings.Contains(n, t) {
			return false
		}
	}
	return true
}

// lowerCaser lowercases without full case folding, so "ß" stays "ß" and
// matching agrees with Highlight.
func lowerCaser() cases.Caser {
	return cases.Lower(language.Und)
}

// MatchByMode compares source against value using mode. With
// caseInsensitive both sides are lowercased first.
func MatchByMode(source, value string, mode MatchMode, caseInsensitive bool) bool {
	if caseInsensitive {
		c := lowerCaser()
		source = c.String(source)
		value = c.String(value)
	}
	return compare(source, value, mode)
}

func compare(source, value string, mode MatchMode) bool {
	switch mode {
	case ModeExact:
		return source == value
	case ModeStarts:
		return strings.HasPrefix(source, value)
	default:
		return strings.Contains(source, value)
	}
}
