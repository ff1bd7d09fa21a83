// Package fusion ranks a catalog of financial-calculation tools against a
// free-text query. A query is rewritten, decomposed into independent
// intents, and fanned out into one branch per intent; each branch expands
// its intent into paraphrases, retrieves candidates for the intent and
// every paraphrase, and reranks them into a fixed-size shortlist. A final
// combine step merges the shortlists into one deduplicated ranking.
package fusion

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/toolshed-ai/toolfusion/src/concurrent"
	"github.com/toolshed-ai/toolfusion/src/models"
	"github.com/toolshed-ai/toolfusion/src/modules"
	"github.com/toolshed-ai/toolfusion/src/retrieval"
)

// Candidate is re-exported so callers consuming results do not need to
// import the retrieval package.
type Candidate = retrieval.Candidate

// Query is one user turn: the raw text plus the prior conversation, oldest
// first. Read-only once built.
type Query struct {
	Text    string
	History []string
}

// ParaphraseResult pairs one paraphrase with the candidates retrieved for
// it. The pairing is positional: Paraphrases[i] produced Candidates[i].
type ParaphraseResult struct {
	Paraphrase string      `json:"paraphrase"`
	Candidates []Candidate `json:"candidates"`
}

// IntentResult is the finished output of one branch.
type IntentResult struct {
	// Index is the intent's position in the decomposition, used to pair
	// shortlists back to intents after the unordered branch join.
	Index         int                `json:"index"`
	Intent        string             `json:"intent"`
	Reasoning     string             `json:"-"`
	OwnCandidates []Candidate        `json:"own_candidates"`
	Paraphrases   []ParaphraseResult `json:"paraphrases"`
	// Shortlist has exactly TopK unique tool names, or is empty when all
	// rerank attempts failed.
	Shortlist []string `json:"shortlist"`
}

// FusionResult is the terminal artifact of one Run.
type FusionResult struct {
	// Tools has exactly FinalK unique tool names in relevance order, or is
	// empty when reranking or combining degraded. An empty list does not
	// distinguish "nothing relevant" from "generation kept failing".
	Tools          []string       `json:"tools"`
	RewrittenQuery string         `json:"rewritten_query"`
	Intents        []IntentResult `json:"intents"`
}

// Options configures a Workflow. Generator and Retriever are required.
type Options struct {
	Generator models.Generator
	Retriever *retrieval.Retriever

	// TopK is each intent's shortlist size. Defaults to 5.
	TopK int
	// FinalK is the final result size. Defaults to 5.
	FinalK int
	// Paraphrases is how many variants each intent expands into. Defaults to 3.
	Paraphrases int
	// MaxParallelRetrievals bounds the per-paraphrase retrieval fan-out.
	MaxParallelRetrievals int
}

// Workflow wires the pipeline stages together. It owns no validation of
// shortlist cardinality; the reranker and combiner enforce their own
// contracts and degrade to empty lists.
type Workflow struct {
	opts       Options
	rewriter   *modules.Rewriter
	decomposer *modules.Decomposer
	expander   *modules.Expander
	reranker   *modules.Reranker
	combiner   *modules.Combiner
}

func New(opts Options) (*Workflow, error) {
	if opts.Generator == nil {
		return nil, fmt.Errorf("fusion: Generator is required")
	}
	if opts.Retriever == nil {
		return nil, fmt.Errorf("fusion: Retriever is required")
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.FinalK <= 0 {
		opts.FinalK = 5
	}
	if opts.Paraphrases <= 0 {
		opts.Paraphrases = 3
	}
	if opts.MaxParallelRetrievals <= 0 {
		opts.MaxParallelRetrievals = 8
	}
	return &Workflow{
		opts:       opts,
		rewriter:   modules.NewRewriter(opts.Generator),
		decomposer: modules.NewDecomposer(opts.Generator),
		expander:   modules.NewExpander(opts.Generator, opts.Paraphrases),
		reranker:   modules.NewReranker(opts.Generator, opts.TopK, opts.Paraphrases),
		combiner:   modules.NewCombiner(opts.Generator, opts.FinalK),
	}, nil
}

// Run executes the full pipeline for one query. Branch failures in
// expansion or retrieval fail the whole Run; rerank exhaustion does not,
// it flows through as an empty shortlist.
func (w *Workflow) Run(ctx context.Context, q Query) (*FusionResult, error) {
	rewritten, err := w.rewriter.Rewrite(ctx, q.Text, q.History)
	if err != nil {
		return nil, err
	}

	intents, err := w.decomposer.Decompose(ctx, rewritten)
	if err != nil {
		return nil, err
	}
	if len(intents) == 0 {
		return nil, fmt.Errorf("fusion: decomposition produced no intents")
	}

	// One branch per intent. Results are appended in completion order and
	// re-paired with their intents by index after the join.
	var (
		mu      sync.Mutex
		results []IntentResult
	)
	g, gctx := errgroup.WithContext(ctx)
	for i, intent := range intents {
		i, intent := i, intent
		g.Go(func() error {
			res, err := w.runBranch(gctx, i, intent)
			if err != nil {
				return err
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	out := &FusionResult{RewrittenQuery: rewritten, Intents: results}

	// Single intent: its shortlist is the final answer, unchanged.
	if len(results) == 1 {
		out.Tools = results[0].Shortlist
		return out, nil
	}

	shortlists := make([][]string, len(results))
	for i, res := range results {
		shortlists[i] = res.Shortlist
	}
	combined, err := w.combiner.Combine(ctx, rewritten, intents, shortlists)
	if err != nil {
		return nil, err
	}
	out.Tools = combined
	return out, nil
}

func (w *Workflow) runBranch(ctx context.Context, index int, intent string) (IntentResult, error) {
	expansion, err := w.expander.Expand(ctx, intent)
	if err != nil {
		return IntentResult{}, err
	}

	own, err := w.opts.Retriever.Retrieve(ctx, intent, w.opts.TopK)
	if err != nil {
		return IntentResult{}, err
	}

	// Per-paraphrase retrieval fan-out; result order mirrors paraphrase
	// order so the reranker can label blocks positionally.
	candidateSets, err := concurrent.ParallelMap(ctx, expansion.Paraphrases,
		func(p string) ([]retrieval.Candidate, error) {
			return w.opts.Retriever.Retrieve(ctx, p, w.opts.TopK)
		}, w.opts.MaxParallelRetrievals)
	if err != nil {
		return IntentResult{}, err
	}

	paraphrases := make([]ParaphraseResult, len(expansion.Paraphrases))
	for i, p := range expansion.Paraphrases {
		paraphrases[i] = ParaphraseResult{Paraphrase: p, Candidates: candidateSets[i]}
	}

	shortlist, err := w.reranker.Rerank(ctx, modules.RerankInput{
		Intent:               intent,
		Reasoning:            expansion.Reasoning,
		OwnCandidates:        own,
		ParaphraseCandidates: candidateSets,
	})
	if err != nil {
		return IntentResult{}, err
	}

	return IntentResult{
		Index:         index,
		Intent:        intent,
		Reasoning:     expansion.Reasoning,
		OwnCandidates: own,
		Paraphrases:   paraphrases,
		Shortlist:     shortlist,
	}, nil
}
