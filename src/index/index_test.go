package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/toolshed-ai/toolfusion/src/index/embed"
)

func TestFormatToolName(t *testing.T) {
	cases := map[string]string{
		"get_future_value":  "Get Future Value",
		"getFutureValue":    "Get Future Value",
		"npv":               "Npv",
		"calculate_ROI":     "Calculate Roi",
		"get_payback_period": "Get Payback Period",
	}
	for in, want := range cases {
		if got := FormatToolName(in); got != want {
			t.Errorf("FormatToolName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildDocumentDefaultFragments(t *testing.T) {
	doc := BuildDocument(ToolDocumentInput{
		Name:        "get_net_present_value",
		Description: "Computes the net present value of a series of cash flows.",
	}, DefaultDocumentOptions())
	want := "Get Net Present Value - Computes the net present value of a series of cash flows."
	if doc != want {
		t.Fatalf("got %q, want %q", doc, want)
	}
}

func TestBuildDocumentWithEnrichment(t *testing.T) {
	opts := DocumentOptions{
		IncludeName:        true,
		IncludeDescription: true,
		IncludeParams:      true,
		HypotheticalQuestions: map[string][]string{
			"get_irr": {"What is the internal rate of return on this project?"},
		},
		KeyTopics: map[string][]string{
			"get_irr": {"irr", "discount rate", "capital budgeting"},
		},
	}
	doc := BuildDocument(ToolDocumentInput{
		Name:        "get_irr",
		Description: "Computes the internal rate of return.",
		Params:      []string{"Cash Flows: the cash flow series, first entry is the initial outlay"},
	}, opts)
	want := "Get Irr - Computes the internal rate of return. - " +
		"Cash Flows: the cash flow series, first entry is the initial outlay - " +
		"What is the internal rate of return on this project? - " +
		"irr discount rate capital budgeting"
	if doc != want {
		t.Fatalf("got %q, want %q", doc, want)
	}
}

func TestBuildDocumentSkipsEmptyFragments(t *testing.T) {
	opts := DocumentOptions{IncludeName: true, IncludeDescription: true, IncludeParams: true}
	doc := BuildDocument(ToolDocumentInput{Name: "get_roi"}, opts)
	if doc != "Get Roi" {
		t.Fatalf("got %q, want %q", doc, "Get Roi")
	}
}

func TestInMemoryStoreSearchOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	records := []ToolRecord{
		{Tool: "get_npv", Document: "net present value", Embedding: embed.DummyEmbedding("net present value")},
		{Tool: "get_irr", Document: "internal rate of return", Embedding: embed.DummyEmbedding("internal rate of return")},
		{Tool: "get_roi", Document: "return on investment", Embedding: embed.DummyEmbedding("return on investment")},
	}
	if err := store.Index(ctx, records); err != nil {
		t.Fatalf("Index: %v", err)
	}

	query := embed.DummyEmbedding("net present value")
	got, err := store.Search(ctx, query, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Tool != "get_npv" {
		t.Fatalf("expected get_npv first, got %s", got[0].Tool)
	}
	if got[0].Score < got[1].Score {
		t.Fatal("results not ordered best first")
	}

	// Same query twice must rank identically.
	again, err := store.Search(ctx, query, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	for i := range got {
		if got[i].Tool != again[i].Tool {
			t.Fatalf("unstable ordering at rank %d: %s vs %s", i, got[i].Tool, again[i].Tool)
		}
	}
}

func TestInMemoryStoreReindexReplaces(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	rec := ToolRecord{Tool: "get_npv", Document: "old", Embedding: embed.DummyEmbedding("old")}
	if err := store.Index(ctx, []ToolRecord{rec}); err != nil {
		t.Fatal(err)
	}
	rec.Document = "new"
	rec.Embedding = embed.DummyEmbedding("new")
	if err := store.Index(ctx, []ToolRecord{rec}); err != nil {
		t.Fatal(err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record after re-index, got %d", n)
	}
}

func TestInMemoryStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	if err := store.Index(ctx, []ToolRecord{
		{Tool: "get_npv", Document: "net present value", Embedding: embed.DummyEmbedding("net present value")},
	}); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "index.json")
	if err := store.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewInMemoryStore()
	if err := loaded.Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	n, err := loaded.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record after load, got %d", n)
	}
	got, err := loaded.Search(ctx, embed.DummyEmbedding("net present value"), 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Tool != "get_npv" {
		t.Fatalf("unexpected search result after load: %+v", got)
	}
}

func TestIndexerIndexesCatalog(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	ix := NewIndexer(store, embed.DummyEmbedder{})

	inputs := []ToolDocumentInput{
		{Name: "get_npv", Description: "Computes net present value."},
		{Name: "get_irr", Description: "Computes internal rate of return."},
	}
	if err := ix.IndexTools(ctx, inputs); err != nil {
		t.Fatalf("IndexTools: %v", err)
	}
	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 records, got %d", n)
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	if got := CosineSimilarity(a, a); got < 0.999 {
		t.Fatalf("identical vectors should score ~1, got %f", got)
	}
	if got := CosineSimilarity(a, []float32{0, 1, 0}); got != 0 {
		t.Fatalf("orthogonal vectors should score 0, got %f", got)
	}
	if got := CosineSimilarity(a, nil); got != 0 {
		t.Fatalf("empty vector should score 0, got %f", got)
	}
}
