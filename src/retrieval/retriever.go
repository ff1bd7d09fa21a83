// Package retrieval turns free-text queries into ranked tool candidates by
// embedding the query and running similarity search over the tool index.
package retrieval

import (
	"context"
	"errors"
	"fmt"

	"github.com/toolshed-ai/toolfusion/src/index"
	"github.com/toolshed-ai/toolfusion/src/index/embed"
)

var (
	// ErrIndexNotReady means the vector store holds no tool documents yet.
	ErrIndexNotReady = errors.New("tool index is empty; run indexing first")
	// ErrQueryFailed wraps embedding or search failures for a retrieval call.
	ErrQueryFailed = errors.New("retrieval query failed")
)

// Candidate is one retrieved tool with its similarity score.
type Candidate struct {
	Tool        string  `json:"tool"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Retriever runs similarity search against an indexed tool catalog.
type Retriever struct {
	Store    index.VectorStore
	Embedder embed.Embedder
}

func NewRetriever(store index.VectorStore, embedder embed.Embedder) *Retriever {
	return &Retriever{Store: store, Embedder: embedder}
}

// Retrieve returns up to topK candidates for the query, best first. The
// same query against an unchanged index yields the same ordering.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]Candidate, error) {
	if topK <= 0 {
		return nil, nil
	}
	n, err := r.Store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	if n == 0 {
		return nil, ErrIndexNotReady
	}

	vec, err := r.Embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %v", ErrQueryFailed, err)
	}
	records, err := r.Store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	out := make([]Candidate, len(records))
	for i, rec := range records {
		out[i] = Candidate{Tool: rec.Tool, Description: rec.Document, Score: rec.Score}
	}
	return out, nil
}
