package cache

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Field is one named query parameter that takes part in a cache key.
type Field struct {
	Name  string
	Value any
}

// F is shorthand for Field{Name: name, Value: value}.
func F(name string, value any) Field {
	return Field{Name: name, Value: value}
}

// Fielder lets a query type list its cache relevant parameters explicitly
// instead of relying on reflection.
type Fielder interface {
	CacheFields() []Field
}

// Canonical renders fields into their canonical, unambiguous form:
//
//   - names are converted to snake_case and fields are sorted by name;
//   - nil values, nil pointers, blank strings and empty slices are dropped,
//     so an omitted filter and an empty filter are the same request;
//   - string whitespace is trimmed and collapsed to single spaces;
//   - every name and value is length prefixed, so separator characters
//     inside a value can never make two different queries look alike.
func Canonical(fields ...Field) string {
	type pair struct{ name, value string }

	pairs := make([]pair, 0, len(fields))
	for _, f := range fields {
		value, ok := canonicalValue(f.Value)
		if !ok {
			continue
		}
		pairs = append(pairs, pair{name: fieldName(f.Name), value: value})
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		if pairs[i].name != pairs[j].name {
			return pairs[i].name < pairs[j].name
		}
		return pairs[i].value < pairs[j].value
	})

	var b strings.Builder
	for _, p := range pairs {
		writeLengthPrefixed(&b, p.name)
		b.WriteByte('=')
		writeLengthPrefixed(&b, p.value)
		b.WriteByte(';')
	}
	return b.String()
}

// Fingerprint hashes the canonical form of fields into a fixed width key
// segment.
func Fingerprint(fields ...Field) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(Canonical(fields...)))
}

// FingerprintOf fingerprints the fields of v (see FieldsOf).
func FingerprintOf(v any) string {
	return Fingerprint(FieldsOf(v)...)
}

// FieldsOf lists the cache relevant parameters of v. Types implementing
// Fielder decide for themselves. Structs contribute their exported fields,
// named by the `cache` tag when present (`cache:"-"` skips a field). Maps
// with string keys contribute one field per entry. Anything else becomes a
// single field named "value".
func FieldsOf(v any) []Field {
	if v == nil {
		return nil
	}
	if f, ok := v.(Fielder); ok {
		return f.CacheFields()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
		if f, ok := rv.Interface().(Fielder); ok {
			return f.CacheFields()
		}
	}

	switch rv.Kind() {
	case reflect.Struct:
		return structFields(rv)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		fields := make([]Field, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			fields = append(fields, Field{Name: iter.Key().String(), Value: iter.Value().Interface()})
		}
		return fields
	}
	return []Field{{Name: "value", Value: rv.Interface()}}
}

func structFields(rv reflect.Value) []Field {
	rt := rv.Type()
	fields := make([]Field, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("cache"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		fields = append(fields, Field{Name: name, Value: rv.Field(i).Interface()})
	}
	return fields
}

// canonicalValue renders v; false means the value is empty and dropped.
func canonicalValue(v any) (string, bool) {
	if v == nil {
		return "", false
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return "", false
		}
		rv = rv.Elem()
	}
	v = rv.Interface()

	switch val := v.(type) {
	case string:
		return normalizeSpace(val)
	case time.Time:
		if val.IsZero() {
			return "", false
		}
		return val.UTC().Format(time.RFC3339Nano), true
	case fmt.Stringer:
		return normalizeSpace(val.String())
	}

	switch rv.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), true
	case reflect.String:
		return normalizeSpace(rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Len() == 0 {
			return "", false
		}
		var b strings.Builder
		b.WriteByte('[')
		for i := 0; i < rv.Len(); i++ {
			item, ok := canonicalValue(rv.Index(i).Interface())
			if !ok {
				continue
			}
			writeLengthPrefixed(&b, item)
		}
		b.WriteByte(']')
		return b.String(), true
	}

	return normalizeSpace(fmt.Sprintf("%v", v))
}

func normalizeSpace(s string) (string, bool) {
	s = strings.Join(strings.Fields(s), " ")
	return s, s != ""
}

func writeLengthPrefixed(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}
