package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record is one primitive/composite entry of the dataset.
type Record struct {
	PrimitiveID    string         `json:"primitive_id"`
	PrimitiveName  string         `json:"primitive_name"`
	CompositeID    string         `json:"composite_id"`
	CompositeName  string         `json:"composite_name"`
	Specifications Specifications `json:"specifications,omitempty"`
	PrimitiveFMA   *FMAMetadata   `json:"primitive_fma,omitempty"`
	CompositeFMA   *FMAMetadata   `json:"composite_fma,omitempty"`
}

// UnmarshalJSON accepts numeric primitive and composite IDs and keeps them in
// their textual form.
func (r *Record) UnmarshalJSON(b []byte) error {
	type Alias Record
	aux := struct {
		*Alias
		PrimitiveID FlexString `json:"primitive_id"`
		CompositeID FlexString `json:"composite_id"`
	}{Alias: (*Alias)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	r.PrimitiveID, r.CompositeID = string(aux.PrimitiveID), string(aux.CompositeID)
	return nil
}

// FMAMetadata is the Foundational Model of Anatomy enrichment attached to a
// primitive or composite. Every field may be missing.
type FMAMetadata struct {
	FMAID          string     `json:"fma_id,omitempty"`
	NumericID      FlexString `json:"fmaid,omitempty"`
	PreferredLabel string     `json:"preferred_label,omitempty"`
	URI            string     `json:"uri,omitempty"`
	Synonyms       []string   `json:"synonyms,omitempty"`
	Definitions    []string   `json:"definitions,omitempty"`
	Parents        []string   `json:"parents,omitempty"`
}

// Empty reports whether m carries no usable field.
func (m *FMAMetadata) Empty() bool {
	if m == nil {
		return true
	}
	return m.FMAID == "" && m.NumericID == "" && m.PreferredLabel == "" && m.URI == "" &&
		len(m.Synonyms) == 0 && len(m.Definitions) == 0 && len(m.Parents) == 0
}

// FlexString accepts either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("must be a string or number: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}

// SpecValue is a specification value: a scalar or a list of scalars.
// Scalars are kept in their textual form (numbers as written in the JSON).
type SpecValue struct {
	Items []string
	List  bool

	raw json.RawMessage
}

// Empty reports whether the value has nothing to display.
func (v SpecValue) Empty() bool {
	for _, it := range v.Items {
		if strings.TrimSpace(it) != "" {
			return false
		}
	}
	return true
}

// String renders the value, joining list items with ", ".
func (v SpecValue) String() string {
	parts := make([]string, 0, len(v.Items))
	for _, it := range v.Items {
		it = strings.TrimSpace(it)
		if it != "" {
			parts = append(parts, it)
		}
	}
	return strings.Join(parts, ", ")
}

func (v *SpecValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	v.raw = append(json.RawMessage(nil), b...)
	if len(b) > 0 && b[0] == '[' {
		var raw []json.RawMessage
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		v.List = true
		v.Items = v.Items[:0]
		for _, r := range raw {
			s, ok, err := scalarText(r)
			if err != nil {
				return err
			}
			if ok {
				v.Items = append(v.Items, s)
			}
		}
		return nil
	}
	s, ok, err := scalarText(b)
	if err != nil {
		return err
	}
	v.List = false
	v.Items = nil
	if ok {
		v.Items = []string{s}
	}
	return nil
}

func (v SpecValue) MarshalJSON() ([]byte, error) {
	if len(v.raw) > 0 {
		return v.raw, nil
	}
	if v.List {
		return json.Marshal(v.Items)
	}
	if len(v.Items) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(v.Items[0])
}

// scalarText returns the display text of a JSON scalar; ok is false for null.
func scalarText(b json.RawMessage) (string, bool, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return "", false, nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", false, err
		}
		return s, true, nil
	default:
		return string(b), true, nil
	}
}

// SpecEntry is one key/value pair of a record's specifications.
type SpecEntry struct {
	Key   string
	Value SpecValue
}

// Specifications keeps the key order of the source JSON object.
type Specifications []SpecEntry

// Get returns the value stored under key.
func (s Specifications) Get(key string) (SpecValue, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Value, true
		}
	}
	return SpecValue{}, false
}

func (s *Specifications) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("specifications must be an object")
	}
	out := Specifications{}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("specification %q: %w", key, err)
		}
		var v SpecValue
		if err := v.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("specification %q: %w", key, err)
		}
		out = append(out, SpecEntry{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func (s Specifications) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := e.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
