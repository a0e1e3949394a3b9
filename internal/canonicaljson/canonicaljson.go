// Package canonicaljson produces deterministic JSON: object keys sorted
// lexicographically, minimal whitespace, array order preserved. It is
// used everywhere a JSON value participates in a hash (spec.md §4.2),
// both under the plain `|`-delimited hashing convention (pipeline,
// CANON) and as the payload fed to the domain-separated hasher
// (GENESIS, VOICE).
//
// The recursive key-sorted map canonicalization follows the original
// Rust implementation's pipeline/fs_utils.rs::canonicalize_json.
package canonicaljson

import (
	"encoding/json"
	"sort"
)

// Marshal returns the canonical JSON encoding of v: v is first round-
// tripped through encoding/json to normalize it into
// map[string]any/[]any/primitives, then recursively re-serialized with
// sorted object keys.
func Marshal(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", err
	}
	var buf []byte
	buf = appendCanonical(buf, raw)
	return string(buf), nil
}

// MustMarshal is Marshal but panics on error. Safe to use only on values
// known to be JSON-serializable (no channels, funcs, unsupported types).
func MustMarshal(v any) string {
	s, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return s
}

func appendCanonical(buf []byte, v any) []byte {
	switch vv := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(vv))
		for k := range vv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			kb, _ := json.Marshal(k)
			buf = append(buf, kb...)
			buf = append(buf, ':')
			buf = appendCanonical(buf, vv[k])
		}
		buf = append(buf, '}')
		return buf

	case []any:
		buf = append(buf, '[')
		for i, item := range vv {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendCanonical(buf, item)
		}
		buf = append(buf, ']')
		return buf

	default:
		b, _ := json.Marshal(vv)
		return append(buf, b...)
	}
}
