// Package keycase converts object keys of decoded JSON trees between the
// backend naming convention (snake_case, "wire") and the client naming
// convention (camelCase, "presentation").
//
// The conversion is not a bijection. Keys that already use the target
// convention pass through unchanged, a '_' followed by anything other than a
// lower-case ASCII letter is kept as is, and two keys of one object that fold
// to the same name (for example "a_b" and "aB") collide. Collisions are
// resolved deterministically: keys are visited in sorted order and the last
// one wins. Inputs are assumed to be acyclic because they come from
// encoding/json.
package keycase

import (
	"sort"
	"strings"
)

// WireKey converts a single presentation key to its wire form: "userId" -> "user_id".
func WireKey(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' {
			b.WriteByte('_')
			b.WriteByte(c + ('a' - 'A'))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// PresentationKey converts a single wire key to its presentation form: "user_id" -> "userId".
func PresentationKey(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c == '_' && i+1 < len(key) && key[i+1] >= 'a' && key[i+1] <= 'z' {
			b.WriteByte(key[i+1] - ('a' - 'A'))
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// ToWire rewrites every object key in v with WireKey.
func ToWire(v any) any {
	return transform(v, WireKey)
}

// ToPresentation rewrites every object key in v with PresentationKey.
func ToPresentation(v any) any {
	return transform(v, PresentationKey)
}

func transform(v any, conv func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for _, k := range sortedKeys(t) {
			out[conv(k)] = transform(t[k], conv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = transform(item, conv)
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(t))
		for _, k := range sortedKeys(t) {
			out[conv(k)] = t[k]
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = transform(item, conv)
		}
		return out
	default:
		return v
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
