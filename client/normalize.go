package client

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// ListFieldPriority is the fixed order in which wrapper-object fields
// are tried when extracting a list from a keyed payload. The order is
// behaviorally significant: when a payload carries more than one
// candidate field, the earliest one wins. The general "items" is tried
// before the domain-specific names.
var ListFieldPriority = []string{"items", "products", "promos", "assistants", "orders"}

// NormalizeList converts a backend payload of drifting shape into one
// canonical ordered sequence. The rules apply in order, first match
// wins:
//
//  1. a bare array is returned as-is
//  2. an object with a ListFieldPriority field holding an array yields
//     that array
//  3. any other object yields its string-valued fields, in the
//     object's own key order, non-strings dropped silently
//  4. everything else (absent, null, scalar, invalid JSON) yields an
//     empty sequence
//
// NormalizeList is pure and never fails: shape mismatch is not an
// error. Elements are copied out of raw, so the caller may reuse the
// buffer.
func NormalizeList(raw []byte) []json.RawMessage {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return []json.RawMessage{}
	}

	payload := gjson.ParseBytes(raw)
	switch {
	case payload.IsArray():
		return elements(payload)

	case payload.IsObject():
		for _, field := range ListFieldPriority {
			if f := payload.Get(field); f.IsArray() {
				return elements(f)
			}
		}
		// No recognized collection field: collect the scalar string
		// values in key order. gjson iterates in document order, which
		// is what keeps this rule deterministic.
		out := []json.RawMessage{}
		payload.ForEach(func(_, value gjson.Result) bool {
			if value.Type == gjson.String {
				out = append(out, json.RawMessage(value.Raw))
			}
			return true
		})
		return out

	default:
		return []json.RawMessage{}
	}
}

// UnmarshalList normalizes raw and unmarshals the resulting sequence
// into v, which must be a pointer to a slice.
func UnmarshalList(raw []byte, v interface{}) error {
	list := NormalizeList(raw)
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func elements(arr gjson.Result) []json.RawMessage {
	out := []json.RawMessage{}
	arr.ForEach(func(_, value gjson.Result) bool {
		out = append(out, json.RawMessage(value.Raw))
		return true
	})
	return out
}
