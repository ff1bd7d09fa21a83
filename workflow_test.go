package fusion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/toolshed-ai/toolfusion/src/index"
	"github.com/toolshed-ai/toolfusion/src/index/embed"
	"github.com/toolshed-ai/toolfusion/src/models"
	"github.com/toolshed-ai/toolfusion/src/retrieval"
)

// routedGenerator answers by inspecting the prompt, so concurrent branches
// can share it without depending on call order.
type routedGenerator struct {
	mu    sync.Mutex
	calls [][]models.Turn
	route func(turns []models.Turn) (string, error)
}

func (g *routedGenerator) Generate(_ context.Context, turns []models.Turn) (string, error) {
	g.mu.Lock()
	copied := make([]models.Turn, len(turns))
	copy(copied, turns)
	g.calls = append(g.calls, copied)
	g.mu.Unlock()
	return g.route(turns)
}

func (g *routedGenerator) recorded() [][]models.Turn {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([][]models.Turn, len(g.calls))
	copy(out, g.calls)
	return out
}

func lastUser(turns []models.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == models.RoleUser {
			return turns[i].Content
		}
	}
	return ""
}

func anyTurnContains(turns []models.Turn, substr string) bool {
	for _, t := range turns {
		if strings.Contains(t.Content, substr) {
			return true
		}
	}
	return false
}

func jsonList(items ...string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = fmt.Sprintf("%q", it)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func testRetriever(t *testing.T, docs map[string]string) *retrieval.Retriever {
	t.Helper()
	store := index.NewInMemoryStore()
	records := make([]index.ToolRecord, 0, len(docs))
	for tool, doc := range docs {
		records = append(records, index.ToolRecord{Tool: tool, Document: doc, Embedding: embed.DummyEmbedding(doc)})
	}
	if err := store.Index(context.Background(), records); err != nil {
		t.Fatalf("seed index: %v", err)
	}
	return retrieval.NewRetriever(store, embed.DummyEmbedder{})
}

func financialDocs() map[string]string {
	return map[string]string{
		"get_net_present_value":        "Get Net Present Value - Computes the net present value of cash flows.",
		"get_present_value":            "Get Present Value - Computes the present value of a future amount.",
		"get_future_value":             "Get Future Value - Computes the future value of an investment.",
		"get_internal_rate_of_return":  "Get Internal Rate Of Return - Discount rate where NPV is zero.",
		"get_return_on_investment":     "Get Return On Investment - Computes the ROI of an investment.",
		"get_payback_period":           "Get Payback Period - Years to recover the initial investment.",
	}
}

func TestRunSingleIntentShortcut(t *testing.T) {
	// Scenario: a single-hop question skips the combiner entirely; the one
	// intent's shortlist is the final result, unchanged.
	query := "What is the NPV of $20,000 in 10 years at 7%?"
	shortlist := []string{"get_net_present_value", "get_present_value", "get_future_value"}

	gen := models.NewScriptedGenerator(
		query, // rewrite
		jsonList(query),                        // decompose: one intent
		"approach and three sentences",         // expansion reasoning
		jsonList("v one", "v two", "v three"),  // expansion extraction
		jsonList(shortlist...),                 // rerank
	)
	wf, err := New(Options{Generator: gen, Retriever: testRetriever(t, financialDocs()), TopK: 3, FinalK: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := wf.Run(context.Background(), Query{Text: query})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(got.Intents))
	}
	for i, tool := range shortlist {
		if got.Tools[i] != tool {
			t.Fatalf("final result must equal the shortlist unreordered, got %v", got.Tools)
		}
	}
	for _, call := range gen.Calls() {
		if anyTurnContains(call, "FINAL UNIQUE TOOLS") {
			t.Fatal("combiner must not run for a single intent")
		}
	}
}

func twoIntentRoute(t *testing.T) *routedGenerator {
	t.Helper()
	npvIntent := "Calculate the net present value (NPV) for the project."
	irrIntent := "Calculate the internal rate of return (IRR) for the project."

	return &routedGenerator{route: func(turns []models.Turn) (string, error) {
		prompt := lastUser(turns)
		switch {
		case strings.Contains(prompt, "Rewritten Query:"):
			return "Calculate the NPV and IRR for the project.", nil
		case strings.Contains(prompt, "STEPS FOR THAT QUERY:"):
			return jsonList(npvIntent, irrIntent), nil
		case strings.Contains(prompt, "Extract the"):
			if anyTurnContains(turns, "(NPV)") {
				return jsonList("npv v1", "npv v2", "npv v3"), nil
			}
			return jsonList("irr v1", "irr v2", "irr v3"), nil
		case strings.Contains(prompt, "YOUR APPROACH, REASONING"):
			return "reasoning text", nil
		case strings.Contains(prompt, "rank the top"):
			if anyTurnContains(turns, "(NPV)") {
				return jsonList("get_net_present_value", "get_present_value", "get_future_value"), nil
			}
			return jsonList("get_internal_rate_of_return", "get_return_on_investment", "get_net_present_value"), nil
		case strings.Contains(prompt, "FINAL UNIQUE TOOLS:"):
			return "take the top tool from each intent, then cycle", nil
		case strings.Contains(prompt, "Return ONLY"):
			return jsonList("get_net_present_value", "get_internal_rate_of_return", "get_present_value"), nil
		default:
			t.Errorf("unrouted prompt: %.80s", prompt)
			return "", errors.New("unrouted prompt")
		}
	}}
}

func TestRunTwoIntentFanOut(t *testing.T) {
	gen := twoIntentRoute(t)
	wf, err := New(Options{Generator: gen, Retriever: testRetriever(t, financialDocs()), TopK: 3, FinalK: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := wf.Run(context.Background(), Query{Text: "NPV and IRR for my project"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got.Intents) != 2 {
		t.Fatalf("expected 2 intents, got %d", len(got.Intents))
	}
	// Branch results must be re-paired with intents by decomposition order
	// regardless of completion order.
	if !strings.Contains(got.Intents[0].Intent, "NPV") || !strings.Contains(got.Intents[1].Intent, "IRR") {
		t.Fatalf("intent order not preserved: %q, %q", got.Intents[0].Intent, got.Intents[1].Intent)
	}
	for _, res := range got.Intents {
		if len(res.Shortlist) != 3 {
			t.Fatalf("intent %q shortlist length %d, want 3", res.Intent, len(res.Shortlist))
		}
		if len(res.Paraphrases) != 3 {
			t.Fatalf("intent %q has %d paraphrases, want 3", res.Intent, len(res.Paraphrases))
		}
		for _, p := range res.Paraphrases {
			if len(p.Candidates) == 0 {
				t.Fatalf("paraphrase %q retrieved no candidates", p.Paraphrase)
			}
		}
	}

	if len(got.Tools) != 3 {
		t.Fatalf("expected exactly 3 final tools, got %v", got.Tools)
	}
	seen := map[string]bool{}
	for _, tool := range got.Tools {
		if seen[tool] {
			t.Fatalf("duplicate tool in final result: %v", got.Tools)
		}
		seen[tool] = true
	}

	// The combiner must see shortlists paired to their intents.
	var combinerPrompt string
	for _, call := range gen.recorded() {
		if p := lastUser(call); strings.Contains(p, "FINAL UNIQUE TOOLS:") {
			combinerPrompt = p
		}
	}
	if combinerPrompt == "" {
		t.Fatal("combiner never invoked")
	}
	if !strings.Contains(combinerPrompt, "INTENT 1: 'Calculate the net present value") ||
		!strings.Contains(combinerPrompt, "INTENT 2: 'Calculate the internal rate") {
		t.Fatal("combiner prompt lost the intent/shortlist pairing")
	}
}

func TestRunRetrievalNotReadyPropagates(t *testing.T) {
	// Scenario: an unpopulated index aborts the run; the error surfaces
	// uncaught through the branch.
	gen := models.NewScriptedGenerator(
		"rewritten",
		jsonList("one intent"),
		"reasoning",
		jsonList("a", "b", "c"),
	)
	r := retrieval.NewRetriever(index.NewInMemoryStore(), embed.DummyEmbedder{})
	wf, err := New(Options{Generator: gen, Retriever: r, TopK: 3, FinalK: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = wf.Run(context.Background(), Query{Text: "anything"})
	if !errors.Is(err, retrieval.ErrIndexNotReady) {
		t.Fatalf("expected ErrIndexNotReady, got %v", err)
	}
}

func TestRunExpansionFailureFailsRun(t *testing.T) {
	gen := models.NewScriptedGenerator(
		"rewritten",
		jsonList("one intent"),
		errors.New("generation down"),
	)
	wf, err := New(Options{Generator: gen, Retriever: testRetriever(t, financialDocs()), TopK: 3, FinalK: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := wf.Run(context.Background(), Query{Text: "anything"}); err == nil {
		t.Fatal("expected expansion failure to fail the run")
	}
}

func TestRunDegradedBranchFlowsToCombiner(t *testing.T) {
	// The IRR branch's reranker fails all attempts; its empty shortlist
	// still reaches the combiner instead of failing the run.
	base := twoIntentRoute(t)
	gen := &routedGenerator{route: func(turns []models.Turn) (string, error) {
		prompt := lastUser(turns)
		if strings.Contains(prompt, "rank the top") && anyTurnContains(turns, "(IRR)") {
			return jsonList("too", "short"), nil // wrong cardinality every attempt
		}
		if strings.Contains(prompt, "Return ONLY") {
			return jsonList("get_net_present_value", "get_present_value", "get_future_value"), nil
		}
		return base.route(turns)
	}}

	wf, err := New(Options{Generator: gen, Retriever: testRetriever(t, financialDocs()), TopK: 3, FinalK: 3})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := wf.Run(context.Background(), Query{Text: "NPV and IRR for my project"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got.Intents[1].Shortlist) != 0 {
		t.Fatalf("expected degraded IRR shortlist to be empty, got %v", got.Intents[1].Shortlist)
	}
	if len(got.Tools) != 3 {
		t.Fatalf("combiner should still produce a full result, got %v", got.Tools)
	}
}

func TestNewValidatesOptions(t *testing.T) {
	if _, err := New(Options{Retriever: testRetriever(t, financialDocs())}); err == nil {
		t.Fatal("expected error without Generator")
	}
	if _, err := New(Options{Generator: models.NewDummyGenerator("")}); err == nil {
		t.Fatal("expected error without Retriever")
	}
}
