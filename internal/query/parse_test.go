package query

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Query
	}{
		{name: "empty", raw: "   ", want: Query{}},
		{
			name: "free terms lower-cased",
			raw:  "Femur  LEFT",
			want: Query{Terms: []string{"femur", "left"}},
		},
		{
			name: "quoted phrase kept whole",
			raw:  `"Thoracic Vertebra" t1`,
			want: Query{Terms: []string{"thoracic vertebra", "t1"}},
		},
		{
			name: "operators map to modes",
			raw:  "p_fma=1234 C_FMA^=FMA7 name:bone n*=rib",
			want: Query{Filters: []Filter{
				{Key: KeyPrimitiveFMA, Mode: ModeExact, Value: "1234"},
				{Key: KeyCompositeFMA, Mode: ModeStarts, Value: "FMA7"},
				{Key: KeyName, Mode: ModeContains, Value: "bone"},
				{Key: KeyName, Mode: ModeContains, Value: "rib"},
			}},
		},
		{
			name: "legacy prefix with value",
			raw:  "P_FMA:9611 femur",
			want: Query{
				Terms:   []string{"femur"},
				Filters: []Filter{{Key: KeyPrimitiveFMA, Mode: ModeContains, Value: "9611"}},
			},
		},
		{
			name: "empty values are dropped",
			raw:  `P_FMA: C_FMA: "name= " heart`,
			want: Query{Terms: []string{"heart"}},
		},
		{
			name: "lower-case legacy prefix without value is a term",
			raw:  "p_fma:",
			want: Query{Terms: []string{"p_fma:"}},
		},
		{
			name: "key needs an operator",
			raw:  "nerve names",
			want: Query{Terms: []string{"nerve", "names"}},
		},
		{
			name: "invalid regex falls back to tokens",
			raw:  "/fem(ur/",
			want: Query{Terms: []string{"/fem(ur/"}},
		},
		{
			name: "trailing tokens make the flags invalid",
			raw:  "/femur/ p_fma=1",
			want: Query{
				Terms:   []string{"/femur/"},
				Filters: []Filter{{Key: KeyPrimitiveFMA, Mode: ModeExact, Value: "1"}},
			},
		},
		{
			name: "single slash is a term",
			raw:  "/femur",
			want: Query{Terms: []string{"/femur"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.raw)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("Parse(%q) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestParse_Regex(t *testing.T) {
	q := Parse("/^femur/")
	if q.Regex == nil {
		t.Fatal("expected a regex")
	}
	if q.Regex.Flags != "i" {
		t.Fatalf("expected default flag i, got %q", q.Regex.Flags)
	}
	if len(q.Terms) != 0 || len(q.Filters) != 0 {
		t.Fatalf("regex query must not carry terms or filters: %+v", q)
	}
	if !q.Regex.MatchString("FEMUR head") || q.Regex.MatchString("Left femur") {
		t.Fatal("unexpected regex behavior")
	}

	q = Parse("/Femur/m")
	if q.Regex == nil || q.Regex.MatchString("femur") {
		t.Fatal("explicit flags must replace the default i")
	}

	if q := Parse("/femur/x"); q.Regex != nil {
		t.Fatal("unknown flag must not compile")
	}
	if q := Parse("/femur/ii"); q.Regex != nil {
		t.Fatal("duplicate flag must not compile")
	}
}

func TestParse_Idempotent(t *testing.T) {
	for _, raw := range []string{
		"",
		"femur left",
		`"thoracic vertebra" p_fma^=FMA n:rib`,
		"/^fem(ur|oral)/i",
		"/broken(/",
	} {
		a, b := Parse(raw), Parse(raw)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("Parse(%q) not pure (-first +second):\n%s", raw, diff)
		}
	}
}

func TestQuery_StringRoundTrip(t *testing.T) {
	for _, raw := range []string{
		`p_fma=1234 c_fma^=FMA7 name:bone "thoracic vertebra"`,
		"/^femur/i",
	} {
		q := Parse(raw)
		again := Parse(q.String())
		if diff := cmp.Diff(q, again, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("round trip of %q changed the query (-want +got):\n%s", raw, diff)
		}
	}
}
