package cache

import (
	"reflect"
	"strings"
)

// KeySeparator joins cache key segments.
const KeySeparator = ":"

const (
	allSuffix    = "all"
	searchSuffix = "search"
	countSuffix  = "count"
)

// Keys builds the cache keys for one entity namespace:
//
//	{prefix}:{entity}:{id}
//	{prefix}:{entity}:all
//	{prefix}:{entity}:search:{fingerprint}
//	{prefix}:{entity}:count:{fingerprint}
//
// Invalidation relies on this exact layout, so every reader and writer of a
// namespace must derive keys from the same Keys value.
type Keys struct {
	Prefix string
	Entity string
}

// NewKeys returns the key builder for prefix and entity. The entity name is
// lowercased.
func NewKeys(prefix, entity string) Keys {
	return Keys{Prefix: prefix, Entity: strings.ToLower(entity)}
}

// ID is the single entity key.
func (k Keys) ID(id string) string {
	return k.join(id)
}

// All is the full collection key.
func (k Keys) All() string {
	return k.join(allSuffix)
}

// Search is the key of a parameterized query result.
func (k Keys) Search(fingerprint string) string {
	return k.join(searchSuffix, fingerprint)
}

// Count is the key of a parameterized count result.
func (k Keys) Count(fingerprint string) string {
	return k.join(countSuffix, fingerprint)
}

func (k Keys) join(parts ...string) string {
	return k.Prefix + KeySeparator + k.Entity + KeySeparator + strings.Join(parts, KeySeparator)
}

// EntityName returns the lowercased type name of T, looking through
// pointers and dropping generic type arguments.
func EntityName[T any]() string {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	name := rt.Name()
	if i := strings.IndexByte(name, '['); i >= 0 {
		name = name[:i]
	}
	return strings.ToLower(name)
}
