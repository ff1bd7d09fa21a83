package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolshed-ai/toolfusion/src/models"
)

const combineAttempts = 3

// Combiner merges every intent's ordered shortlist into one globally
// unique list of exactly FinalK tool names. Each attempt is a full two-pass
// protocol: a free-form reasoning pass over the shortlists, then a
// structured extraction pass over that reasoning. Three attempts, then an
// empty result.
type Combiner struct {
	Generator models.Generator
	FinalK    int
}

func NewCombiner(g models.Generator, finalK int) *Combiner {
	return &Combiner{Generator: g, FinalK: finalK}
}

func (c *Combiner) reasoningTurns(query string, intents []string, shortlists [][]string) []models.Turn {
	numIntents := len(intents)
	topKPerIntent := 0
	if len(shortlists) > 0 {
		topKPerIntent = len(shortlists[0])
	}
	share := c.FinalK / numIntents
	if share < 1 {
		share = 1
	}
	shareText := fmt.Sprintf("%d tool", share)
	if share > 1 {
		shareText = fmt.Sprintf("%d tools", share)
	}

	system := fmt.Sprintf(`You are an expert at combining and narrowing down the top tools from each user intent to a single unique list of %[1]d tools that solve the user question.
You will be given a user query that has been broken down into %[2]d distinct user intents.
You are also given the %[3]d most relevant tools for each intent that can solve that particular intent, which ARE IN ORDER OF RELEVANCE!
Your task is to combine the top %[3]d tools from each intent into a single unique list of %[1]d tools that are most relevant to the user question, which can solve the entire %[2]d-step process.
Your first approach should be to take the top %[4]s from each intent and then add the next most relevant tool(s) from the intents until you have a unique list of %[1]d tools.
However, one important thing to note is that there may be overlap between the tools from each intent, this is because of our retrieval process.
If there are overlapping tools within each top %[4]s, first understand which top %[4]s are most relevant to their respective intents, and then go to the other intents and add the next most relevant tools, sliding one position deeper into that intent's list for every tool an earlier intent already claimed.

Here is an example with no overlapping tools (with 2 distinct user intents and 3 tools per intent, and a final top k of 3):
---------
USER QUESTION: 'I want to calculate the net present value (NPV) and internal rate of return (IRR) for a project with specific cash flows.'
INTENT 1: 'Calculate the net present value (NPV) for the project.'
LIST OF TOOLS FOR INTENT 1: ["get_net_present_value", "get_present_value", "get_future_value"]
INTENT 2: 'Calculate the internal rate of return (IRR) for the project.'
LIST OF TOOLS FOR INTENT 2: ["get_internal_rate_of_return", "get_modified_internal_rate_of_return", "get_return_on_investment"]
THE APPROACH TO TAKE:
First, the top 1 tool for intent 1 is 'get_net_present_value' and the top 1 tool for intent 2 is 'get_internal_rate_of_return'. Since there is no overlap, we take these directly. To reach 3 final tools we select the next most relevant tool from either list, cycling across intents in order: 'get_present_value'. Now we have a unique list of 3 tools.
---------

Here is an example with fully overlapping tools (2 intents, 3 tools per intent, final top k of 3):
---------
USER QUESTION: 'Compare the ROI of two projects.'
INTENT 1: 'Calculate the ROI of the first project.'
LIST OF TOOLS FOR INTENT 1: ["get_return_on_investment", "get_net_present_value", "get_internal_rate_of_return"]
INTENT 2: 'Calculate the ROI of the second project.'
LIST OF TOOLS FOR INTENT 2: ["get_return_on_investment", "get_net_present_value", "get_internal_rate_of_return"]
THE APPROACH TO TAKE:
The top 1 tool for intent 1 is 'get_return_on_investment'. Intent 2's top tool is the same, so intent 2 slides one position deeper and claims 'get_net_present_value'. We still need 1 more tool, so we keep cycling: intent 1's next unclaimed tool is 'get_internal_rate_of_return'. Final unique list of 3 tools: ["get_return_on_investment", "get_net_present_value", "get_internal_rate_of_return"].
---------
YOUR TURN:`, c.FinalK, numIntents, topKPerIntent, shareText)

	var human strings.Builder
	fmt.Fprintf(&human, "USER QUESTION: '%s'\n", query)
	for i, intent := range intents {
		fmt.Fprintf(&human, "INTENT %d: '%s'\n", i+1, intent)
		fmt.Fprintf(&human, "LIST OF TOOLS FOR INTENT %d: %s\n", i+1, formatShortlist(shortlists[i]))
	}
	fmt.Fprintf(&human, "THE APPROACH TO TAKE AND %d FINAL UNIQUE TOOLS:", c.FinalK)

	return []models.Turn{models.System(system), models.User(human.String())}
}

func formatShortlist(tools []string) string {
	quoted := make([]string, len(tools))
	for i, t := range tools {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// Combine returns exactly FinalK unique tool names drawn from the
// shortlists, or nil after three failed attempts. Shortlists must be
// aligned with intents by index; arrival order of branches is irrelevant
// as long as that pairing holds.
func (c *Combiner) Combine(ctx context.Context, query string, intents []string, shortlists [][]string) ([]string, error) {
	if len(intents) == 0 || len(intents) != len(shortlists) {
		return nil, fmt.Errorf("combine: %d intents with %d shortlists", len(intents), len(shortlists))
	}
	turns := c.reasoningTurns(query, intents, shortlists)

	for attempt := 0; attempt < combineAttempts; attempt++ {
		reasoning, err := c.Generator.Generate(ctx, turns)
		if err != nil {
			if !retryable(ctx, err) {
				return nil, err
			}
			continue
		}

		extraction := append(append([]models.Turn{}, turns...),
			models.Assistant(reasoning),
			models.User(fmt.Sprintf("Return ONLY the %d final unique tools as a JSON array of strings, for example: [\"tool_1\", \"tool_2\", \"tool_3\"]. No reasoning, no other text.", c.FinalK)),
		)
		out, err := c.Generator.Generate(ctx, extraction)
		if err != nil {
			if !retryable(ctx, err) {
				return nil, err
			}
			forget(c.Generator, turns)
			continue
		}

		names, err := decodeStringList(out, 0)
		if err != nil {
			forget(c.Generator, turns)
			forget(c.Generator, extraction)
			continue
		}
		unique := dedupe(names)
		if len(unique) != c.FinalK {
			forget(c.Generator, turns)
			forget(c.Generator, extraction)
			continue
		}
		return unique, nil
	}
	return nil, nil
}
