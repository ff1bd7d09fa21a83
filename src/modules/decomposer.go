package modules

import (
	"context"
	"fmt"

	"github.com/toolshed-ai/toolfusion/src/models"
)

const decomposerSystemPrompt = `You are an expert at breaking down user questions into clearly defined step(s).
You will be given a user question that can be answered by a single action or multiple actions (multi-hop queries).
For some questions, the user may be asking for a single action, which is typically just a single topic and query, which can be broken down into one step.
For other questions, the user may be asking for multiple things (usually denoted by the use of 'and' or 'additionally'), which can be broken down into multiple steps.
Your job is to:
1. Break down the question into clearly defined steps.
2. Always be as clear as possible, including the technical details.
3. For multi-step questions, break them down into 2-4 reasoning steps, depending on the complexity of the request.

Example of single-step questions:
-----------
EX. QUESTION:
What is the NPV of my project?
EX. STEP(S):
["What is the NPV of my project?"]
-----------

Example of multi-step questions (2+ steps):
-----------
EX. QUESTION:
What's the net present value (NPV) and internal rate of return (IRR) for a project with an initial investment of $5,000, projected annual cash inflows of $1,200 for 7 years, and a 6% discount rate?
EX. STEP(S):
["Calculate the net present value (NPV) for the project with an initial investment of $5,000, projected annual cash inflows of $1,200 for 7 years, and a 6% discount rate.", "Calculate the internal rate of return (IRR) for the project with the same initial investment of $5,000 and projected annual cash inflows of $1,200 over 7 years."]
-----------
Respond with a JSON array of strings, nothing else.`

// Decomposer splits a rewritten query into independent intents, one per
// sub-question. Order is preserved; no cardinality is enforced here beyond
// a non-empty, well-formed list.
type Decomposer struct {
	Generator models.Generator
}

func NewDecomposer(g models.Generator) *Decomposer { return &Decomposer{Generator: g} }

func (d *Decomposer) Decompose(ctx context.Context, query string) ([]string, error) {
	turns := []models.Turn{
		models.System(decomposerSystemPrompt),
		models.User(fmt.Sprintf("USER QUESTION: %s\nSTEPS FOR THAT QUERY:", query)),
	}
	out, err := d.Generator.Generate(ctx, turns)
	if err != nil {
		return nil, fmt.Errorf("decompose query: %w", err)
	}
	intents, err := decodeStringList(out, 0)
	if err != nil {
		return nil, fmt.Errorf("decompose query: %w", err)
	}
	return intents, nil
}
