package modules

import (
	"context"
	"fmt"

	"github.com/toolshed-ai/toolfusion/src/models"
)

const expanderSystemPrompt = `You are an expert at converting user questions into %d sentence variations that target different keywords and nuanced approaches, with the goal of embedding these queries into a vector database to retrieve relevant financial equations.
Your goal is to craft %d nuanced sentence variations that target different aspects of understanding or solving the query.
While keeping the underlying concept of the query, you can generate variations that focus on a more abstract version of the financial concept, or a quantitative version.
You can vary the structure, some variations can be more professional and others more casual.

**Example 1:**
**Example user question:** "I want to see the discount rate at which the NPV is break even."
**Example 3 sentence variations:**
1. "Calculate the discount rate that results in a net present value (NPV) of zero for a project, effectively finding the internal rate of return (IRR) at which the investment breaks even."
2. "Determine the precise discount rate where the net present value (NPV) of an investment equals zero, indicating the project's break-even point in terms of profitability."
3. "For a project with an initial cost of $5,000 and expected annual cash inflows of $1,200 over five years, compute the discount rate at which the net present value (NPV) becomes zero."
------------------
**Example 2:**
**Example user question:** "Calculate the future value of an investment of $10,000 over 10 years with an annual interest rate of 5%% compounded annually."
**Example 3 sentence variations:**
1. "Calculate how much my investment will be in the future: initial $10,000 over 10 years with an annual interest rate of 5%% compounded annually."
2. "Determine how much an initial investment will grow over time given a specific interest rate and compounding frequency."
3. "I want to know how much my investment will be worth 7 years from now."
------------------
Before you start, understand this from a practical standpoint: the user question can be matched to a range of financial tools or solutions within the system, and your crafted variations should optimize for breadth and specificity.
Write out your approach and plan for tackling this, then provide the %d sentences you would craft for the user question.
Think through your approach step by step.`

// Expansion pairs the structured paraphrases with the free-form reasoning
// that produced them. The reasoning is reused downstream as conversational
// grounding for the reranker.
type Expansion struct {
	Paraphrases []string
	Reasoning   string
}

// Expander produces exactly N paraphrases of one intent through a two-pass
// protocol: a free-form reasoning pass, then a structured extraction pass
// over that reasoning. Both passes run on every call; errors propagate
// without retry.
type Expander struct {
	Generator models.Generator
	N         int
}

func NewExpander(g models.Generator, n int) *Expander {
	if n <= 0 {
		n = 3
	}
	return &Expander{Generator: g, N: n}
}

// expansionTurns is the prompt context of the reasoning pass. The reranker
// rebuilds the same context so its candidate blocks land in a conversation
// the generator has already seen.
func expansionTurns(intent string, n int) []models.Turn {
	return []models.Turn{
		models.System(fmt.Sprintf(expanderSystemPrompt, n, n, n)),
		models.User(fmt.Sprintf("USER QUESTION: %s\nYOUR APPROACH, REASONING, AND %d SENTENCES:", intent, n)),
	}
}

func (e *Expander) Expand(ctx context.Context, intent string) (Expansion, error) {
	reasoning, err := e.Generator.Generate(ctx, expansionTurns(intent, e.N))
	if err != nil {
		return Expansion{}, fmt.Errorf("expand intent: reasoning pass: %w", err)
	}

	extraction := append(expansionTurns(intent, e.N),
		models.Assistant(reasoning),
		models.User(fmt.Sprintf("Extract the %d question variations from your response above and return them as a JSON array of exactly %d strings. No other text.", e.N, e.N)),
	)
	out, err := e.Generator.Generate(ctx, extraction)
	if err != nil {
		return Expansion{}, fmt.Errorf("expand intent: extraction pass: %w", err)
	}
	paraphrases, err := decodeStringList(out, e.N)
	if err != nil {
		return Expansion{}, fmt.Errorf("expand intent: %w", err)
	}
	return Expansion{Paraphrases: paraphrases, Reasoning: reasoning}, nil
}
