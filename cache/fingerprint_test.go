package cache

import (
	"testing"
	"time"
)

type searchParams struct {
	Text     string
	Category *string
	MinPrice *float64
	Take     int
	Internal string `cache:"-"`
	Source   string `cache:"origin"`
}

type fielderQuery struct{ q string }

func (f fielderQuery) CacheFields() []Field {
	return []Field{F("q", f.q)}
}

func ptr[T any](v T) *T { return &v }

func TestFingerprintIgnoresConstructionOrder(t *testing.T) {
	a := Fingerprint(F("text", "car"), F("category", "vehicles"), F("take", 20))
	b := Fingerprint(F("take", 20), F("category", "vehicles"), F("text", "car"))

	if a != b {
		t.Fatalf("expected equal fingerprints, got %s and %s", a, b)
	}
}

func TestFingerprintNameCasing(t *testing.T) {
	a := Fingerprint(F("MinPrice", 10))
	b := Fingerprint(F("minPrice", 10))
	c := Fingerprint(F("min_price", 10))

	if a != b || b != c {
		t.Fatalf("expected field name casing to be canonical: %s %s %s", a, b, c)
	}
}

func TestFingerprintSeparatorsCannotCollide(t *testing.T) {
	tests := []struct {
		name string
		a, b []Field
	}{
		{
			name: "value containing separator",
			a:    []Field{F("a", "x;b=y")},
			b:    []Field{F("a", "x"), F("b", "y")},
		},
		{
			name: "value containing equals",
			a:    []Field{F("a", "b=c")},
			b:    []Field{F("a=b", "c")},
		},
		{
			name: "value containing colon",
			a:    []Field{F("text", "a:b")},
			b:    []Field{F("text", "a"), F("b", "")},
		},
		{
			name: "slice boundaries",
			a:    []Field{F("tags", []string{"a,b"})},
			b:    []Field{F("tags", []string{"a", "b"})},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Canonical(tt.a...) == Canonical(tt.b...) {
				t.Fatalf("canonical forms collide: %q", Canonical(tt.a...))
			}
			if Fingerprint(tt.a...) == Fingerprint(tt.b...) {
				t.Fatal("fingerprints collide")
			}
		})
	}
}

func TestFingerprintDistinguishesValues(t *testing.T) {
	base := Fingerprint(F("text", "car"), F("skip", 0), F("take", 20))

	others := [][]Field{
		{F("text", "cars"), F("skip", 0), F("take", 20)},
		{F("text", "car"), F("skip", 20), F("take", 20)},
		{F("text", "car"), F("skip", 0), F("take", 21)},
		{F("text", "car"), F("skip", 0), F("take", 20), F("status", "live")},
	}

	for i, fields := range others {
		if Fingerprint(fields...) == base {
			t.Errorf("case %d: expected distinct fingerprint", i)
		}
	}
}

func TestFingerprintEmptyValues(t *testing.T) {
	var nilString *string
	empty := Fingerprint(F("text", "car"))

	tests := []struct {
		name   string
		fields []Field
	}{
		{name: "nil", fields: []Field{F("text", "car"), F("category", nil)}},
		{name: "nil pointer", fields: []Field{F("text", "car"), F("category", nilString)}},
		{name: "empty string", fields: []Field{F("text", "car"), F("category", "")}},
		{name: "blank string", fields: []Field{F("text", "car"), F("category", "   ")}},
		{name: "empty slice", fields: []Field{F("text", "car"), F("tags", []string{})}},
		{name: "zero time", fields: []Field{F("text", "car"), F("since", time.Time{})}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Fingerprint(tt.fields...); got != empty {
				t.Fatalf("expected empty value to be dropped")
			}
		})
	}
}

func TestFingerprintKeepsZeroNumbers(t *testing.T) {
	if Fingerprint(F("skip", 0)) == Fingerprint() {
		t.Fatal("expected an explicit zero to take part in the fingerprint")
	}
}

func TestFingerprintWhitespaceNormalization(t *testing.T) {
	a := Fingerprint(F("text", "  red   car "))
	b := Fingerprint(F("text", "red car"))
	if a != b {
		t.Fatal("expected whitespace to be normalized")
	}

	if Fingerprint(F("text", "Red car")) == b {
		t.Fatal("expected value casing to be preserved")
	}
}

func TestFingerprintTimeIsUTC(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	local := ts.In(time.FixedZone("CEST", 2*60*60))

	if Fingerprint(F("since", ts)) != Fingerprint(F("since", local)) {
		t.Fatal("expected the same instant to fingerprint equally across zones")
	}
}

func TestFingerprintIsFixedWidth(t *testing.T) {
	for _, fields := range [][]Field{nil, {F("a", 1)}, {F("text", "a very long query string")}} {
		if got := Fingerprint(fields...); len(got) != 16 {
			t.Fatalf("expected 16 hex chars, got %q", got)
		}
	}
}

func TestCanonicalFormat(t *testing.T) {
	got := Canonical(F("text", "red car"), F("Take", 20))
	want := "4:take=2:20;4:text=7:red car;"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestFieldsOfStruct(t *testing.T) {
	p := searchParams{Text: "car", Category: ptr("vehicles"), Take: 10, Internal: "secret", Source: "ebay"}

	got := Canonical(FieldsOf(p)...)
	want := Canonical(F("text", "car"), F("category", "vehicles"), F("take", 10), F("origin", "ebay"))
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if FingerprintOf(p) != FingerprintOf(&p) {
		t.Fatal("expected pointer and value to fingerprint equally")
	}
}

func TestFieldsOfHonoursFielder(t *testing.T) {
	q := fielderQuery{q: "lamp"}

	if FingerprintOf(q) != Fingerprint(F("q", "lamp")) {
		t.Fatal("expected Fielder to decide the fields")
	}
	if FingerprintOf(&q) != FingerprintOf(q) {
		t.Fatal("expected pointer to Fielder to be honoured")
	}
}

func TestFieldsOfMapAndScalar(t *testing.T) {
	m := map[string]any{"b": 2, "a": "x"}
	if FingerprintOf(m) != Fingerprint(F("a", "x"), F("b", 2)) {
		t.Fatal("expected map entries to become fields")
	}

	if FingerprintOf("lamp") != Fingerprint(F("value", "lamp")) {
		t.Fatal("expected scalar to become a single value field")
	}

	if FieldsOf(nil) != nil {
		t.Fatal("expected nil to have no fields")
	}
}

func TestFieldName(t *testing.T) {
	tests := map[string]string{
		"MinPrice":     "min_price",
		"minPrice":     "min_price",
		"min_price":    "min_price",
		"ID":           "id",
		"SourceID":     "source_id",
		"IDValue":      "id_value",
		"page-size":    "page_size",
		"__page  size": "page_size",
		"Take2":        "take_2",
		"key:value":    "key_value",
		"":             "",
	}

	for in, want := range tests {
		if got := fieldName(in); got != want {
			t.Errorf("fieldName(%q) = %q, want %q", in, got, want)
		}
	}
}
