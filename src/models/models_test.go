package models

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDummyGeneratorDefaultPrefix(t *testing.T) {
	gen := NewDummyGenerator("")
	resp, err := gen.Generate(context.Background(), []Turn{User("line1\nline2")})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp != "Dummy response: line2" {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestDummyGeneratorUsesFinalTurn(t *testing.T) {
	gen := NewDummyGenerator("Prefix:")
	resp, err := gen.Generate(context.Background(), []Turn{
		System("system text"),
		User("first\n\nsecond\n  \nthird"),
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp != "Prefix: third" {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestDummyGeneratorHandlesEmptyPrompt(t *testing.T) {
	gen := NewDummyGenerator("Prefix")
	resp, err := gen.Generate(context.Background(), []Turn{User("\n\n\n")})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if resp != "Prefix <empty prompt>" {
		t.Fatalf("unexpected response: %q", resp)
	}
}

func TestNewGeneratorErrorsOnUnknownProvider(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "unknown", "model"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestScriptedGeneratorReplaysInOrder(t *testing.T) {
	boom := errors.New("boom")
	gen := NewScriptedGenerator("first", boom, "second")

	got, err := gen.Generate(context.Background(), []Turn{User("a")})
	if err != nil || got != "first" {
		t.Fatalf("call 1 = %q, %v", got, err)
	}
	if _, err := gen.Generate(context.Background(), []Turn{User("b")}); !errors.Is(err, boom) {
		t.Fatalf("call 2 err = %v, want boom", err)
	}
	got, err = gen.Generate(context.Background(), []Turn{User("c")})
	if err != nil || got != "second" {
		t.Fatalf("call 3 = %q, %v", got, err)
	}
	if _, err := gen.Generate(context.Background(), []Turn{User("d")}); err == nil {
		t.Fatal("expected exhaustion error")
	}

	calls := gen.Calls()
	if len(calls) != 4 || calls[1][0].Content != "b" {
		t.Fatalf("unexpected recorded calls: %+v", calls)
	}
}

func TestCachedGeneratorHitSkipsInner(t *testing.T) {
	inner := NewScriptedGenerator("only response")
	cached := NewCachedGenerator(inner, 10, time.Hour, "")

	turns := []Turn{System("s"), User("u")}
	first, err := cached.Generate(context.Background(), turns)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := cached.Generate(context.Background(), turns)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if first != second {
		t.Fatalf("cache returned %q then %q", first, second)
	}
	if got := len(inner.Calls()); got != 1 {
		t.Fatalf("inner generator called %d times, want 1", got)
	}
}

func TestCachedGeneratorInvalidateForcesFreshCall(t *testing.T) {
	inner := NewScriptedGenerator("rejected", "accepted")
	cached := NewCachedGenerator(inner, 10, time.Hour, "")

	turns := []Turn{User("same prompt")}
	first, _ := cached.Generate(context.Background(), turns)
	cached.Invalidate(turns)
	second, err := cached.Generate(context.Background(), turns)
	if err != nil {
		t.Fatalf("post-invalidate call: %v", err)
	}
	if first == second {
		t.Fatalf("expected a fresh response after Invalidate, got %q twice", first)
	}
	if got := len(inner.Calls()); got != 2 {
		t.Fatalf("inner generator called %d times, want 2", got)
	}
}

func TestCachedGeneratorDistinguishesRoles(t *testing.T) {
	inner := NewScriptedGenerator("r1", "r2")
	cached := NewCachedGenerator(inner, 10, time.Hour, "")

	a, _ := cached.Generate(context.Background(), []Turn{User("same")})
	b, _ := cached.Generate(context.Background(), []Turn{Assistant("same")})
	if a == b {
		t.Fatal("different roles with identical content must not share a cache key")
	}
}
