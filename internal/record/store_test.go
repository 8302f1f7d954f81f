package record

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `[
  {
    "primitive_id": "FMA9611",
    "primitive_name": "Femur",
    "composite_id": "FMA24140",
    "composite_name": "Lower limb",
    "specifications": {"length_mm": 260, "breadth_mm": null, "notes": ["left", "", "right"]},
    "primitive_fma": {"fma_id": "FMA9611", "fmaid": 9611, "preferred_label": "Femur", "synonyms": ["thigh bone"]}
  },
  {
    "primitive_id": "FMA7088",
    "primitive_name": "Heart",
    "composite_id": "FMA7161",
    "composite_name": "Thorax"
  }
]`

func TestDecode_OptionalFields(t *testing.T) {
	s, err := Decode(strings.NewReader(sampleDataset))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	femur := s.At(0)
	require.Len(t, femur.Specifications, 3)
	assert.Equal(t, "length_mm", femur.Specifications[0].Key)
	assert.Equal(t, "260", femur.Specifications[0].Value.String())
	assert.True(t, femur.Specifications[1].Value.Empty())

	notes, ok := femur.Specifications.Get("notes")
	require.True(t, ok)
	assert.True(t, notes.List)
	assert.Equal(t, "left, right", notes.String())

	require.NotNil(t, femur.PrimitiveFMA)
	assert.Equal(t, FlexString("9611"), femur.PrimitiveFMA.NumericID)
	assert.Nil(t, femur.CompositeFMA)
	assert.True(t, femur.CompositeFMA.Empty())

	heart := s.At(1)
	assert.Nil(t, heart.Specifications)
	assert.Nil(t, heart.PrimitiveFMA)
}

func TestDecode_NumericIDsAreStringCast(t *testing.T) {
	s, err := Decode(strings.NewReader(`[
  {"primitive_id": 9611, "primitive_name": "Femur", "composite_id": "FMA24140", "composite_name": "Lower limb",
   "specifications": {"length_mm": 260}},
  {"primitive_id": null, "primitive_name": "Fragment", "composite_id": 7161}
]`))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	femur := s.At(0)
	assert.Equal(t, "9611", femur.PrimitiveID)
	assert.Equal(t, "FMA24140", femur.CompositeID)
	assert.Equal(t, "Femur", femur.PrimitiveName)
	assert.Equal(t, "260", femur.Specifications[0].Value.String())

	frag := s.At(1)
	assert.Empty(t, frag.PrimitiveID)
	assert.Equal(t, "7161", frag.CompositeID)

	i, err := s.FindPrimitive("9611")
	require.NoError(t, err)
	assert.Equal(t, 0, i)
}

func TestDecode_RejectsNonScalarID(t *testing.T) {
	_, err := Decode(strings.NewReader(`[{"primitive_id": {"x": 1}}]`))
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid dataset")
}

func TestPrioritySort_Stable(t *testing.T) {
	s := NewStore([]Record{
		{PrimitiveName: "Heart"},
		{PrimitiveName: "Nasal bone"},
		{PrimitiveName: "Liver"},
		{PrimitiveName: "Thoracic Vertebrae"},
		{PrimitiveName: "Molar TOOTH"},
	})
	s.PrioritySort()

	var names []string
	for _, r := range s.Records() {
		names = append(names, r.PrimitiveName)
	}
	assert.Equal(t, []string{"Nasal bone", "Thoracic Vertebrae", "Molar TOOTH", "Heart", "Liver"}, names)
}

func TestFindPrimitive(t *testing.T) {
	s := NewStore([]Record{{PrimitiveID: "FMA1"}, {PrimitiveID: "FMA2"}})

	i, err := s.FindPrimitive("FMA2")
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	_, err = s.FindPrimitive("FMA3")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSpecifications_RoundTrip(t *testing.T) {
	s, err := Decode(strings.NewReader(sampleDataset))
	require.NoError(t, err)

	b, err := s.At(0).Specifications.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"length_mm": 260, "breadth_mm": null, "notes": ["left", "", "right"]}`, string(b))
}
