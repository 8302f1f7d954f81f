package detail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/primview/internal/assets"
	"github.com/kamusis/primview/internal/record"
)

type stubChecker struct {
	present map[string]bool
	calls   int
}

func (s *stubChecker) Available(_ context.Context, c assets.Class, name string) bool {
	s.calls++
	return s.present[string(c)+"/"+name]
}

func TestBuild(t *testing.T) {
	rec := record.Record{
		PrimitiveID:   "FMA9611",
		PrimitiveName: "Femur",
		Specifications: record.Specifications{
			{Key: "length_mm", Value: record.SpecValue{Items: []string{"260"}}},
			{Key: "breadth_mm", Value: record.SpecValue{}},
		},
		PrimitiveFMA: &record.FMAMetadata{
			NumericID:      "9611",
			PreferredLabel: "Femur",
			Synonyms:       []string{"thigh bone", " ", "os femoris"},
		},
		CompositeFMA: &record.FMAMetadata{},
	}
	chk := &stubChecker{present: map[string]bool{"png/FMA9611.png": true}}

	d := Build(context.Background(), rec, chk)
	assert.Equal(t, Asset{Path: "assets/png/FMA9611.png", Available: true}, d.Image)
	assert.Equal(t, Asset{Path: "assets/stl/FMA9611.stl", Available: false}, d.Model)

	require.Len(t, d.Sections, 2)
	assert.Equal(t, "Specifications", d.Sections[0].Title)
	assert.Equal(t, []Entry{{Label: "length mm", Value: "260"}}, d.Sections[0].Entries)

	fma := d.Sections[1]
	assert.Equal(t, "Primitive FMA metadata", fma.Title)
	assert.Equal(t, []Entry{
		{Label: "FMA ID", Value: "9611"},
		{Label: "Numeric ID", Value: "9611"},
		{Label: "Preferred Label", Value: "Femur"},
		{Label: "Synonyms", Value: "thigh bone, os femoris"},
	}, fma.Entries)
}

func TestBuild_NoPrimitiveID(t *testing.T) {
	chk := &stubChecker{}
	d := Build(context.Background(), record.Record{PrimitiveName: "Orphan"}, chk)
	assert.Zero(t, chk.calls)
	assert.False(t, d.Image.Available)
	assert.Empty(t, d.Sections)
}
