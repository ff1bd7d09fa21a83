package embed

import (
	"context"
	"testing"
)

func TestDummyEmbeddingDeterministic(t *testing.T) {
	a := DummyEmbedding("net present value")
	b := DummyEmbedding("net present value")
	if len(a) != 768 {
		t.Fatalf("expected 768 dims, got %d", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding not deterministic at dim %d", i)
		}
	}
}

func TestDummyEmbeddingDistinguishesText(t *testing.T) {
	a := DummyEmbedding("compound interest")
	b := DummyEmbedding("dividend yield")
	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different texts produced identical embeddings")
	}
}

func TestNewEmbedderDummy(t *testing.T) {
	e, err := NewEmbedder(context.Background(), "dummy", "")
	if err != nil {
		t.Fatalf("NewEmbedder: %v", err)
	}
	vec, err := e.Embed(context.Background(), "payback period")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 768 {
		t.Fatalf("expected 768 dims, got %d", len(vec))
	}
}

func TestNewEmbedderUnknownProvider(t *testing.T) {
	if _, err := NewEmbedder(context.Background(), "word2vec", ""); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
