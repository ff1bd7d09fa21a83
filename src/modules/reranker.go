package modules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/toolshed-ai/toolfusion/src/models"
	"github.com/toolshed-ai/toolfusion/src/retrieval"
)

const rerankAttempts = 3

// RerankInput is everything one intent's branch gathered before reranking.
// ParaphraseCandidates is aligned positionally with the expansion's
// paraphrase order.
type RerankInput struct {
	Intent               string
	Reasoning            string
	OwnCandidates        []retrieval.Candidate
	ParaphraseCandidates [][]retrieval.Candidate
}

// Reranker collapses an intent's own candidates plus each paraphrase's
// candidates into exactly TopK unique tool names, ordered by relevance to
// the intent. Up to three attempts; after the third failure it returns an
// empty shortlist rather than an error. Only generation failures and
// schema violations are retried; context cancellation propagates.
type Reranker struct {
	Generator models.Generator
	TopK      int
	// N is the paraphrase count used to rebuild the expansion context.
	N int
}

func NewReranker(g models.Generator, topK, n int) *Reranker {
	return &Reranker{Generator: g, TopK: topK, N: n}
}

func formatCandidates(candidates []retrieval.Candidate) string {
	var b strings.Builder
	for _, c := range candidates {
		fmt.Fprintf(&b, "-------\nTOOL NAME: %s\nTOOL DESCRIPTION & USEFUL DETAILS: %s\n", c.Tool, c.Description)
	}
	return b.String()
}

func (r *Reranker) rerankTurns(in RerankInput) []models.Turn {
	var b strings.Builder
	fmt.Fprintf(&b, "OK here are the results:\nUSER QUESTION EMBEDDED AND RETRIEVED TOOLS:\n%s", formatCandidates(in.OwnCandidates))
	for i, pc := range in.ParaphraseCandidates {
		fmt.Fprintf(&b, "SENTENCE %d EMBEDDED AND RETRIEVED TOOLS:\n%s================\n", i+1, formatCandidates(pc))
	}
	fmt.Fprintf(&b, "=========\nBased on these results, rank the top %d most relevant tools to solve the user question.\nReturn a JSON array of exactly %d unique TOOL NAMES, nothing else.", r.TopK, r.TopK)

	return append(expansionTurns(in.Intent, r.N),
		models.Assistant(in.Reasoning),
		models.User(b.String()),
	)
}

// Rerank returns exactly TopK unique tool names, or nil when all attempts
// fail. A nil shortlist with a nil error is the soft-failure value; callers
// must not read it as "zero relevant tools exist."
func (r *Reranker) Rerank(ctx context.Context, in RerankInput) ([]string, error) {
	turns := r.rerankTurns(in)
	for attempt := 0; attempt < rerankAttempts; attempt++ {
		out, err := r.Generator.Generate(ctx, turns)
		if err != nil {
			if !retryable(ctx, err) {
				return nil, err
			}
			continue
		}
		names, err := decodeStringList(out, r.TopK)
		if err != nil {
			forget(r.Generator, turns)
			continue
		}
		if unique := dedupe(names); len(unique) != r.TopK {
			forget(r.Generator, turns)
			continue
		}
		return names, nil
	}
	return nil, nil
}

// retryable reports whether a failed attempt should consume retry budget.
// Cancellation and deadline errors abort the loop so genuine shutdowns are
// not hidden behind it.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
