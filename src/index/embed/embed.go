package embed

import (
	"context"
	"errors"
	"os"
	"strings"
)

// Embedder is a pluggable text-embedding provider.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ErrNotSupported is returned by providers that do not offer embeddings.
var ErrNotSupported = errors.New("embeddings not supported by this provider")

// Options configures the local fastembed model (used only with -tags fastembed).
type Options struct {
	Model     string // e.g. "fast-bge-small-en-v1.5" (default)
	CacheDir  string // e.g. ".fastembed"
	MaxLength int    // token limit, 0 = default
	BatchSize int    // capped at 4*GOMAXPROCS
}

// ---------- Dummy (fallback) ----------

type DummyEmbedder struct{}

func (DummyEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return DummyEmbedding(text), nil
}

// DummyEmbedding is a cheap deterministic embedding for tests and offline runs.
func DummyEmbedding(text string) []float32 {
	vec := make([]float32, 768)
	for i, ch := range []byte(text) {
		vec[i%768] += float32(ch) / 255.0
	}
	return vec
}

// NewEmbedder chooses a provider by name:
// openai|ollama|fastembed|dummy. Empty name infers from available API
// keys/OLLAMA_HOST, else dummy.
func NewEmbedder(ctx context.Context, provider, model string) (Embedder, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return NewOpenAIEmbedder(model)
	case "ollama":
		return NewOllamaEmbedder(model)
	case "fastembed":
		return NewFastEmbedder(ctx, defaultFastEmbedOptions())
	case "dummy":
		return DummyEmbedder{}, nil
	case "":
		if os.Getenv("OPENAI_API_KEY") != "" || os.Getenv("OPENAI_KEY") != "" {
			return NewOpenAIEmbedder(model)
		}
		if os.Getenv("OLLAMA_HOST") != "" {
			return NewOllamaEmbedder(model)
		}
		return DummyEmbedder{}, nil
	default:
		return nil, errors.New("unknown embedding provider: " + provider)
	}
}
