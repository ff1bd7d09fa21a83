package index

import (
	"context"
	"fmt"

	"github.com/toolshed-ai/toolfusion/src/concurrent"
	"github.com/toolshed-ai/toolfusion/src/index/embed"
)

// Indexer builds documents from tool inputs, embeds them, and writes the
// result to a vector store. Embedding runs through a bounded worker pool.
type Indexer struct {
	Store    VectorStore
	Embedder embed.Embedder
	Options  DocumentOptions
	Workers  int
}

func NewIndexer(store VectorStore, embedder embed.Embedder) *Indexer {
	return &Indexer{
		Store:    store,
		Embedder: embedder,
		Options:  DefaultDocumentOptions(),
		Workers:  8,
	}
}

// IndexTools embeds one document per input and persists the batch. A
// failed embedding aborts the whole batch; nothing is written.
func (ix *Indexer) IndexTools(ctx context.Context, inputs []ToolDocumentInput) error {
	if ix.Store == nil || ix.Embedder == nil {
		return fmt.Errorf("indexer: store and embedder are required")
	}
	workers := ix.Workers
	if workers <= 0 {
		workers = 8
	}
	records, err := concurrent.ParallelMap(ctx, inputs, func(in ToolDocumentInput) (ToolRecord, error) {
		doc := BuildDocument(in, ix.Options)
		vec, err := ix.Embedder.Embed(ctx, doc)
		if err != nil {
			return ToolRecord{}, fmt.Errorf("embed %q: %w", in.Name, err)
		}
		return ToolRecord{Tool: in.Name, Document: doc, Embedding: vec}, nil
	}, workers)
	if err != nil {
		return err
	}
	if err := ix.Store.Index(ctx, records); err != nil {
		return fmt.Errorf("index tools: %w", err)
	}
	return nil
}
