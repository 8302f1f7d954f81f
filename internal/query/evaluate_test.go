package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kamusis/primview/internal/record"
)

func names(t *testing.T, ds *record.Store, v View) []string {
	t.Helper()
	out := make([]string, 0, len(v))
	for _, i := range v {
		out = append(out, ds.At(i).PrimitiveName)
	}
	return out
}

func sampleStore() *record.Store {
	return record.NewStore([]record.Record{
		{PrimitiveID: "FMA1234", PrimitiveName: "Thoracic Vertebra T1", CompositeID: "FMA9000"},
		{PrimitiveID: "FMA12345", PrimitiveName: "Lumbar Vertebra", CompositeID: "FMA9001"},
		{PrimitiveID: "FMA9611", PrimitiveName: "Femur", CompositeID: "FMA24140"},
		{PrimitiveID: "FMA9612", PrimitiveName: "Left femur", CompositeID: "FMA24140"},
		{PrimitiveID: "FMA7088", PrimitiveName: "Heart", CompositeID: "FMA7161"},
	})
}

func TestEvaluate_EmptyQueryKeepsEverything(t *testing.T) {
	ds := sampleStore()
	v, hl := Evaluate(Parse(""), ds)
	assert.Equal(t, All(ds.Len()), v)
	assert.Empty(t, hl)
}

func TestEvaluate_TermsAreANDedSubstrings(t *testing.T) {
	ds := sampleStore()
	v, hl := Evaluate(Parse("VERTEBRA t1"), ds)
	assert.Equal(t, []string{"Thoracic Vertebra T1"}, names(t, ds, v))
	assert.Equal(t, []string{"vertebra", "t1"}, hl)

	v, _ = Evaluate(Parse("femur"), ds)
	assert.Equal(t, []string{"Femur", "Left femur"}, names(t, ds, v))
}

func TestEvaluate_QuotedPhrase(t *testing.T) {
	ds := sampleStore()
	v, _ := Evaluate(Parse(`"thoracic vertebra"`), ds)
	assert.Equal(t, []string{"Thoracic Vertebra T1"}, names(t, ds, v))
}

func TestEvaluate_ExactExcludesLongerID(t *testing.T) {
	ds := record.NewStore([]record.Record{
		{PrimitiveID: "1234", PrimitiveName: "a"},
		{PrimitiveID: "12345", PrimitiveName: "b"},
	})
	v, _ := Evaluate(Parse("p_fma=1234"), ds)
	assert.Equal(t, View{0}, v)

	v, _ = Evaluate(Parse("p_fma^=1234"), ds)
	assert.Equal(t, View{0, 1}, v)

	v, _ = Evaluate(Parse("p_fma:234"), ds)
	assert.Equal(t, View{0, 1}, v)
}

func TestEvaluate_IDFiltersAreCaseSensitive(t *testing.T) {
	ds := sampleStore()
	v, _ := Evaluate(Parse("c_fma=fma24140"), ds)
	assert.Empty(t, v)

	v, _ = Evaluate(Parse("c_fma=FMA24140"), ds)
	assert.Equal(t, []string{"Femur", "Left femur"}, names(t, ds, v))
}

func TestEvaluate_NameFilterFoldsCase(t *testing.T) {
	ds := sampleStore()
	v, _ := Evaluate(Parse("name=FEMUR"), ds)
	assert.Equal(t, []string{"Femur"}, names(t, ds, v))

	v, _ = Evaluate(Parse("n^=left"), ds)
	assert.Equal(t, []string{"Left femur"}, names(t, ds, v))
}

func TestEvaluate_RegexIgnoresTerms(t *testing.T) {
	ds := sampleStore()
	v, hl := Evaluate(Parse("/^femur/i"), ds)
	assert.Equal(t, []string{"Femur"}, names(t, ds, v))
	assert.Empty(t, hl)

	q := Parse("/vertebra/")
	q.Terms = []string{"heart"}
	v, _ = Evaluate(q, ds)
	assert.Equal(t, []string{"Thoracic Vertebra T1", "Lumbar Vertebra"}, names(t, ds, v))
}

func TestEvaluate_FiltersApplyWithRegex(t *testing.T) {
	ds := sampleStore()
	q := Parse("/vertebra/")
	q.Filters = []Filter{{Key: KeyPrimitiveFMA, Mode: ModeExact, Value: "FMA12345"}}
	v, _ := Evaluate(q, ds)
	assert.Equal(t, []string{"Lumbar Vertebra"}, names(t, ds, v))
}

func TestEvaluate_TermsAndFiltersCombine(t *testing.T) {
	ds := sampleStore()
	v, _ := Evaluate(Parse("femur c_fma=FMA24140 p_fma:9612"), ds)
	assert.Equal(t, []string{"Left femur"}, names(t, ds, v))
}

func TestEvaluate_PreservesStoreOrder(t *testing.T) {
	ds := sampleStore()
	v, _ := Evaluate(Parse("e"), ds)
	for i := 1; i < len(v); i++ {
		assert.Less(t, v[i-1], v[i])
	}
}

func TestMatchByMode(t *testing.T) {
	assert.True(t, MatchByMode("1234", "1234", ModeExact, false))
	assert.False(t, MatchByMode("12345", "1234", ModeExact, false))
	assert.True(t, MatchByMode("12345", "1234", ModeStarts, false))
	assert.False(t, MatchByMode("01234", "1234", ModeStarts, false))
	assert.True(t, MatchByMode("01234", "123", ModeContains, false))
	assert.True(t, MatchByMode("Femur", "fEMUR", ModeExact, true))
	assert.False(t, MatchByMode("Femur", "fEMUR", ModeExact, false))
}

func TestHighlight(t *testing.T) {
	mark := func(s string) string { return "[" + s + "]" }
	assert.Equal(t, "[Femur] head of [femur]", Highlight("Femur head of femur", []string{"femur"}, mark))
	assert.Equal(t, "[Thoracic] vertebra", Highlight("Thoracic vertebra", []string{"thor", "racic"}, mark))
	assert.Equal(t, "a.b", Highlight("a.b", nil, mark))
	assert.Equal(t, "[a.b]", Highlight("a.b", []string{"a.b"}, mark))
}

func TestEvaluate_TermMatchAgreesWithHighlight(t *testing.T) {
	mark := func(s string) string { return "[" + s + "]" }
	ds := record.NewStore([]record.Record{
		{PrimitiveName: "Straße"},
		{PrimitiveName: "STRASSE nerve"},
	})

	v, hl := Evaluate(Parse("ss"), ds)
	assert.Equal(t, []string{"STRASSE nerve"}, names(t, ds, v))
	for _, i := range v {
		assert.Contains(t, Highlight(ds.At(i).PrimitiveName, hl, mark), "[SS]")
	}

	v, hl = Evaluate(Parse("STRAß"), ds)
	assert.Equal(t, []string{"Straße"}, names(t, ds, v))
	assert.Equal(t, "[Straß]e", Highlight("Straße", hl, mark))
}
