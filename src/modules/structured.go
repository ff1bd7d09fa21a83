// Package modules holds the generation-backed pipeline stages: query
// rewriting, decomposition, paraphrase expansion, per-intent reranking,
// cross-intent combining, and document enrichment. Each stage talks to a
// models.Generator and parses its output through the helpers in this file.
package modules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/toolshed-ai/toolfusion/src/models"
)

// forget evicts a rejected response from a caching generator so the next
// retry attempt with the same turns is a fresh call, not a cache hit.
// No-op for generators that do not cache.
func forget(g models.Generator, turns []models.Turn) {
	if inv, ok := g.(models.CacheInvalidator); ok {
		inv.Invalidate(turns)
	}
}

// SchemaError reports a generation response that parsed but violated the
// requested shape (wrong element count, duplicates, or unparseable list).
type SchemaError struct {
	Want int
	Got  int
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Msg != "" {
		return "schema violation: " + e.Msg
	}
	return fmt.Sprintf("schema violation: expected %d items, got %d", e.Want, e.Got)
}

// extractJSONArray returns the first balanced top-level JSON array in s,
// or "" if none is present. Brackets inside string literals are skipped.
func extractJSONArray(s string) string {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i, ch := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			if start == -1 {
				start = i
			}
			depth++
		case ']':
			if start != -1 {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

// decodeStringList parses a generation response as a JSON array of strings.
// want > 0 enforces exactly that many elements; want == 0 accepts any
// non-empty list. Parse failures and count mismatches are *SchemaError.
func decodeStringList(raw string, want int) ([]string, error) {
	arr := extractJSONArray(raw)
	if arr == "" {
		return nil, &SchemaError{Want: want, Msg: "no JSON array in response"}
	}
	var items []string
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, &SchemaError{Want: want, Msg: "response array is not a list of strings"}
	}
	for i, it := range items {
		items[i] = strings.TrimSpace(it)
	}
	if want > 0 && len(items) != want {
		return nil, &SchemaError{Want: want, Got: len(items)}
	}
	if want == 0 && len(items) == 0 {
		return nil, &SchemaError{Want: want, Msg: "empty list"}
	}
	return items, nil
}

// dedupe preserves first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}
