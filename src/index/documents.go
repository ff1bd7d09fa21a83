package index

import (
	"regexp"
	"strings"
)

// ToolDocumentInput is the raw material for one indexable tool document.
// Params holds "Name: description" fragments from the tool's argument
// schema, already in presentation order.
type ToolDocumentInput struct {
	Name        string
	Description string
	Params      []string
}

// DocumentOptions selects which fragments join the embedded text. The
// zero value includes name and description only.
type DocumentOptions struct {
	IncludeName        bool
	IncludeDescription bool
	IncludeParams      bool
	// HypotheticalQuestions and KeyTopics map tool name to LLM-generated
	// enrichment text; missing entries are skipped.
	HypotheticalQuestions map[string][]string
	KeyTopics             map[string][]string
}

// DefaultDocumentOptions embeds name and description, the fragments every
// catalog can supply without enrichment.
func DefaultDocumentOptions() DocumentOptions {
	return DocumentOptions{IncludeName: true, IncludeDescription: true}
}

var camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)

// FormatToolName turns an identifier like "get_future_value" or
// "getFutureValue" into "Get Future Value" for embedding.
func FormatToolName(name string) string {
	spaced := strings.ReplaceAll(name, "_", " ")
	spaced = camelBoundary.ReplaceAllString(spaced, "$1 $2")
	words := strings.Fields(strings.ToLower(spaced))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// BuildDocument assembles the text indexed for one tool. Fragments join
// with " - " in a fixed order: name, description, params, hypothetical
// questions, key topics. Empty fragments are dropped.
func BuildDocument(in ToolDocumentInput, opts DocumentOptions) string {
	var parts []string
	if opts.IncludeName {
		parts = append(parts, FormatToolName(in.Name))
	}
	if opts.IncludeDescription && in.Description != "" {
		parts = append(parts, in.Description)
	}
	if opts.IncludeParams && len(in.Params) > 0 {
		parts = append(parts, strings.Join(in.Params, " "))
	}
	if qs := opts.HypotheticalQuestions[in.Name]; len(qs) > 0 {
		parts = append(parts, strings.Join(qs, " "))
	}
	if topics := opts.KeyTopics[in.Name]; len(topics) > 0 {
		parts = append(parts, strings.Join(topics, " "))
	}
	return strings.Join(parts, " - ")
}
