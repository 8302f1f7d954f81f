package detail

import (
	"context"
	"strings"

	"github.com/kamusis/primview/internal/assets"
	"github.com/kamusis/primview/internal/record"
)

// Entry is one labelled line of a section.
type Entry struct {
	Label string
	Value string
}

// Section is a titled group of entries.
type Section struct {
	Title   string
	Entries []Entry
}

// Asset describes one optional preview file.
type Asset struct {
	Path      string
	Available bool
}

// Detail is everything the detail pane shows for one record.
type Detail struct {
	Record   record.Record
	Image    Asset
	Model    Asset
	Sections []Section
}

// Checker answers asset existence; *assets.Resolver satisfies it.
type Checker interface {
	Available(ctx context.Context, c assets.Class, fileName string) bool
}

// Build assembles the detail view of rec. Asset availability comes from chk;
// a record without a primitive ID has no assets and chk is not consulted.
func Build(ctx context.Context, rec record.Record, chk Checker) Detail {
	d := Detail{Record: rec, Sections: Sections(rec)}
	if rec.PrimitiveID == "" || chk == nil {
		return d
	}
	d.Image = resolve(ctx, chk, assets.Image, rec.PrimitiveID)
	d.Model = resolve(ctx, chk, assets.Model, rec.PrimitiveID)
	return d
}

func resolve(ctx context.Context, chk Checker, c assets.Class, id string) Asset {
	name := c.FileName(id)
	return Asset{Path: c.Path(name), Available: chk.Available(ctx, c, name)}
}

// Sections returns the metadata sections of rec, leaving out empty ones.
func Sections(rec record.Record) []Section {
	var out []Section
	if s, ok := specSection(rec.Specifications); ok {
		out = append(out, s)
	}
	if s, ok := fmaSection("Primitive FMA metadata", rec.PrimitiveFMA); ok {
		out = append(out, s)
	}
	if s, ok := fmaSection("Composite FMA metadata", rec.CompositeFMA); ok {
		out = append(out, s)
	}
	return out
}

func specSection(spec record.Specifications) (Section, bool) {
	s := Section{Title: "Specifications"}
	for _, e := range spec {
		if e.Value.Empty() {
			continue
		}
		s.Entries = append(s.Entries, Entry{
			Label: strings.ReplaceAll(e.Key, "_", " "),
			Value: e.Value.String(),
		})
	}
	return s, len(s.Entries) > 0
}

func fmaSection(title string, m *record.FMAMetadata) (Section, bool) {
	if m.Empty() {
		return Section{}, false
	}
	s := Section{Title: title}
	add := func(label, value string) {
		if v := strings.TrimSpace(value); v != "" {
			s.Entries = append(s.Entries, Entry{Label: label, Value: v})
		}
	}
	addList := func(label string, values []string) {
		add(label, joinNonEmpty(values))
	}

	fmaID := m.FMAID
	if fmaID == "" {
		fmaID = string(m.NumericID)
	}
	add("FMA ID", fmaID)
	add("Numeric ID", string(m.NumericID))
	add("Preferred Label", m.PreferredLabel)
	add("URI", m.URI)
	addList("Synonyms", m.Synonyms)
	addList("Definitions", m.Definitions)
	addList("Parents", m.Parents)
	return s, len(s.Entries) > 0
}

func joinNonEmpty(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
