package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolshed-ai/toolfusion/src/models"
)

const rewriterSystemPrompt = `You are an intelligent assistant designed to rewrite user queries for better understanding and clarity.
Your task is to analyze the user's input, identify ambiguities, and use the previous chat history for context. Correct grammar, clarify terms, and rewrite the query concisely for better understanding.

Example 1:
-----------
Previous Chat History: ["User: status of project?", "Assistant: The project is 80% complete."]
User Input: "timeline?"
Rewritten Query: "What is the project timeline?"

Example 2:
-----------
Previous Chat History: ["User: How's the product launch going?", "Assistant: The launch is on schedule."]
User Input: "what about it?"
Rewritten Query: "Can you give me more details about the product launch?"

Example 3 (Multi-hop Query):
-----------
Previous Chat History: []
User Input: "current value of inv of 5k, yearly flows 3k for 3 yrs @ R 3.5, also IRR for another one 7k cost, 4k flows for 8 yrs, 2.75%"
Rewritten Query: "What is the NPV of an initial investment of $5,000 with yearly cash flows of $3,000 for 3 years at a 3.5% rate? Also, calculate the internal rate of return (IRR) for another investment with an initial cost of $7,000 and yearly cash flows of $4,000 for 8 years."
-----------
Reply with the rewritten query only.`

// Rewriter clarifies a raw query into one self-contained question using
// the conversation history for context. Single attempt, free-text output.
type Rewriter struct {
	Generator models.Generator
}

func NewRewriter(g models.Generator) *Rewriter { return &Rewriter{Generator: g} }

func (r *Rewriter) Rewrite(ctx context.Context, query string, history []string) (string, error) {
	turns := []models.Turn{
		models.System(rewriterSystemPrompt),
		models.User(fmt.Sprintf("Previous Chat History: %s\nUser Input: '%s'\nRewritten Query:", formatHistory(history), query)),
	}
	out, err := r.Generator.Generate(ctx, turns)
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}
	return strings.Trim(strings.TrimSpace(out), `"`), nil
}

func formatHistory(history []string) string {
	if len(history) == 0 {
		return "[]"
	}
	quoted := make([]string, len(history))
	for i, h := range history {
		quoted[i] = fmt.Sprintf("%q", h)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
