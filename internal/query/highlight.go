package query

import (
	"regexp"
	"sort"
	"strings"
)

// Highlight wraps every case-insensitive occurrence of each term in name
// with mark. Overlapping occurrences are merged into one span.
func Highlight(name string, terms []string, mark func(string) string) string {
	type span struct{ start, end int }
	var spans []span
	for _, t := range terms {
		if t == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(t))
		if err != nil {
			continue
		}
		for _, loc := range re.FindAllStringIndex(name, -1) {
			spans = append(spans, span{loc[0], loc[1]})
		}
	}
	if len(spans) == 0 {
		return name
	}

	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.start <= last.end {
			if s.end > last.end {
				last.end = s.end
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	prev := 0
	for _, s := range merged {
		b.WriteString(name[prev:s.start])
		b.WriteString(mark(name[s.start:s.end]))
		prev = s.end
	}
	b.WriteString(name[prev:])
	return b.String()
}
