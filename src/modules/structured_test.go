package modules

import (
	"errors"
	"testing"
)

func TestDecodeStringListExact(t *testing.T) {
	got, err := decodeStringList(`Here are the tools: ["get_npv", "get_irr", "get_roi"]`, 3)
	if err != nil {
		t.Fatalf("decodeStringList: %v", err)
	}
	if len(got) != 3 || got[0] != "get_npv" || got[2] != "get_roi" {
		t.Fatalf("unexpected list: %v", got)
	}
}

func TestDecodeStringListWrongCount(t *testing.T) {
	_, err := decodeStringList(`["a", "b"]`, 3)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if se.Want != 3 || se.Got != 2 {
		t.Fatalf("unexpected counts in %v", se)
	}
}

func TestDecodeStringListNoArray(t *testing.T) {
	_, err := decodeStringList("I could not find any tools.", 3)
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
}

func TestDecodeStringListAnyLength(t *testing.T) {
	got, err := decodeStringList(`["one intent"]`, 0)
	if err != nil {
		t.Fatalf("decodeStringList: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("unexpected list: %v", got)
	}
	if _, err := decodeStringList(`[]`, 0); err == nil {
		t.Fatal("expected error for empty list")
	}
}

func TestDecodeStringListBracketsInsideStrings(t *testing.T) {
	got, err := decodeStringList(`["a [nested] name", "b"]`, 2)
	if err != nil {
		t.Fatalf("decodeStringList: %v", err)
	}
	if got[0] != "a [nested] name" {
		t.Fatalf("unexpected first element: %q", got[0])
	}
}

func TestDedupePreservesOrder(t *testing.T) {
	got := dedupe([]string{"b", "a", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
