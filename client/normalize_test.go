package client

import (
	"reflect"
	"testing"
)

func normalizeStrings(t *testing.T, raw string) []string {
	t.Helper()
	list := NormalizeList([]byte(raw))
	out := make([]string, 0, len(list))
	for _, el := range list {
		out = append(out, string(el))
	}
	return out
}

func TestNormalizeList_BareArray(t *testing.T) {
	got := normalizeStrings(t, `[1,2,3]`)
	want := []string{"1", "2", "3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList([1,2,3]) = %v, want %v", got, want)
	}
}

func TestNormalizeList_WrappedObject(t *testing.T) {
	got := normalizeStrings(t, `{"items":["a","b"]}`)
	want := []string{`"a"`, `"b"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf(`NormalizeList({items:..}) = %v, want %v`, got, want)
	}

	got = normalizeStrings(t, `{"promos":["x"]}`)
	if !reflect.DeepEqual(got, []string{`"x"`}) {
		t.Errorf(`NormalizeList({promos:..}) = %v, want ["x"]`, got)
	}

	got = normalizeStrings(t, `{"assistants":[{"id":1}]}`)
	if !reflect.DeepEqual(got, []string{`{"id":1}`}) {
		t.Errorf(`NormalizeList({assistants:..}) = %v`, got)
	}
}

func TestNormalizeList_FieldPriority(t *testing.T) {
	// items is the general field and wins over domain-specific names
	// regardless of document order.
	got := normalizeStrings(t, `{"promos":["p"],"items":["i"]}`)
	if !reflect.DeepEqual(got, []string{`"i"`}) {
		t.Errorf("NormalizeList() = %v, want items to win", got)
	}
}

func TestNormalizeList_SkipsNonArrayCandidates(t *testing.T) {
	// A candidate field holding a non-sequence does not match rule 2;
	// the next candidate is tried.
	got := normalizeStrings(t, `{"items":"nope","promos":["p"]}`)
	if !reflect.DeepEqual(got, []string{`"p"`}) {
		t.Errorf("NormalizeList() = %v, want promos fallback", got)
	}
}

func TestNormalizeList_ScalarStringValues(t *testing.T) {
	// Key order preserved, non-strings dropped silently.
	got := normalizeStrings(t, `{"a":"x","b":2,"c":"y"}`)
	want := []string{`"x"`, `"y"`}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeList() = %v, want %v", got, want)
	}
}

func TestNormalizeList_UnrecognizedShapes(t *testing.T) {
	for _, raw := range []string{`null`, `42`, `"str"`, `true`, ``, `{invalid`} {
		got := NormalizeList([]byte(raw))
		if len(got) != 0 {
			t.Errorf("NormalizeList(%q) = %v, want empty", raw, got)
		}
		if got == nil {
			t.Errorf("NormalizeList(%q) returned nil, want empty sequence", raw)
		}
	}
	if got := NormalizeList(nil); len(got) != 0 {
		t.Errorf("NormalizeList(nil) = %v, want empty", got)
	}
}

func TestNormalizeList_EmptyShapes(t *testing.T) {
	if got := NormalizeList([]byte(`[]`)); len(got) != 0 {
		t.Errorf("NormalizeList([]) = %v, want empty", got)
	}
	if got := NormalizeList([]byte(`{}`)); len(got) != 0 {
		t.Errorf("NormalizeList({}) = %v, want empty", got)
	}
}

func TestNormalizeList_CopiesOutOfInput(t *testing.T) {
	raw := []byte(`["keep"]`)
	got := NormalizeList(raw)
	raw[2] = 'X'
	if string(got[0]) != `"keep"` {
		t.Errorf("normalized element aliased the input buffer: %s", got[0])
	}
}

func TestUnmarshalList(t *testing.T) {
	var products []Product
	raw := `{"items":[{"id":1,"title":"Tea"},{"id":2,"title":"Coffee"}]}`
	if err := UnmarshalList([]byte(raw), &products); err != nil {
		t.Fatalf("UnmarshalList() error: %v", err)
	}
	if len(products) != 2 || products[0].Title != "Tea" || products[1].ID != 2 {
		t.Errorf("UnmarshalList() = %+v", products)
	}

	var settings []string
	if err := UnmarshalList([]byte(`{"shop":"tgmarket","limit":5,"mode":"live"}`), &settings); err != nil {
		t.Fatalf("UnmarshalList() error: %v", err)
	}
	if !reflect.DeepEqual(settings, []string{"tgmarket", "live"}) {
		t.Errorf("UnmarshalList() = %v", settings)
	}
}

func TestNormalizeList_IsPure(t *testing.T) {
	raw := []byte(`{"items":["a"]}`)
	first := NormalizeList(raw)
	second := NormalizeList(raw)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("NormalizeList not deterministic: %v vs %v", first, second)
	}
}
