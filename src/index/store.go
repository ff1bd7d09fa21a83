// Package index holds the tool knowledge base: documents built from tool
// specifications, the embedders that vectorize them, and the vector stores
// that serve similarity search for candidate retrieval.
package index

import (
	"context"
	"math"
)

// ToolRecord is one indexed catalog entry. Tool is the callable tool
// identifier; Document is the descriptive text that was embedded. Score is
// populated on search results only (cosine similarity, higher is better).
type ToolRecord struct {
	ID        int64     `json:"id"`
	Tool      string    `json:"tool"`
	Document  string    `json:"document"`
	Embedding []float32 `json:"embedding,omitempty"`
	Score     float64   `json:"score,omitempty"`
}

// VectorStore is the contract for similarity-search backends.
type VectorStore interface {
	// Index persists the records, replacing any previous content for the
	// same tool identifiers.
	Index(ctx context.Context, records []ToolRecord) error
	// Search returns up to k records most similar to the query embedding,
	// best first.
	Search(ctx context.Context, queryEmbedding []float32, k int) ([]ToolRecord, error)
	// Count reports how many records the store holds.
	Count(ctx context.Context) (int, error)
}

// CosineSimilarity compares two embeddings; zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var dot, normA, normB float64
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	for i := 0; i < length; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
