package modules

import (
	"context"
	"fmt"
	"strings"

	"github.com/toolshed-ai/toolfusion/src/models"
)

const questionsSystemPrompt = `You are an expert at generating hypothetical questions that a given tool can answer.
You are given the name of a tool, its description, and its arguments.
Generate %d example questions that the tool can answer.

Roughly half of the questions should contain all of the arguments and read like a text-book question (for example: What is the present value of $20,000 to be received in 10 years if the discount rate is 7%%?).
The other half should be more abstract and focus on the tool's utility and purpose, with no argument values (for example: "I want to know the discount rate of a project with breakeven net present value").
Together the two kinds should cover the diverse usage of the tool.
Respond with a JSON array of %d strings, nothing else.`

const topicsSystemPrompt = `You are an expert at distilling a tool's purpose into short key topics.
You are given the name of a tool, its description, and its arguments.
Produce %d short key topics or phrases (2-5 words each) that capture what the tool computes and when someone would reach for it.
Respond with a JSON array of %d strings, nothing else.`

// Enhancer generates enrichment text per tool: hypothetical user questions
// and key topics, both used to widen the indexed document. Single attempt
// per call; no cardinality enforcement beyond a well-formed list.
type Enhancer struct {
	Generator models.Generator
	N         int
}

func NewEnhancer(g models.Generator, n int) *Enhancer {
	if n <= 0 {
		n = 5
	}
	return &Enhancer{Generator: g, N: n}
}

func toolPrompt(name, description string, params []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**Tool Name:** %s\n\n**Description:**\n%s\n", name, description)
	if len(params) > 0 {
		b.WriteString("\n**Arguments:**\n")
		for _, p := range params {
			fmt.Fprintf(&b, "- %s\n", p)
		}
	}
	return b.String()
}

func (e *Enhancer) generateList(ctx context.Context, system, name, description string, params []string) ([]string, error) {
	turns := []models.Turn{
		models.System(fmt.Sprintf(system, e.N, e.N)),
		models.User(toolPrompt(name, description, params)),
	}
	out, err := e.Generator.Generate(ctx, turns)
	if err != nil {
		return nil, err
	}
	return decodeStringList(out, 0)
}

func (e *Enhancer) HypotheticalQuestions(ctx context.Context, name, description string, params []string) ([]string, error) {
	qs, err := e.generateList(ctx, questionsSystemPrompt, name, description, params)
	if err != nil {
		return nil, fmt.Errorf("hypothetical questions for %s: %w", name, err)
	}
	return qs, nil
}

func (e *Enhancer) KeyTopics(ctx context.Context, name, description string, params []string) ([]string, error) {
	topics, err := e.generateList(ctx, topicsSystemPrompt, name, description, params)
	if err != nil {
		return nil, fmt.Errorf("key topics for %s: %w", name, err)
	}
	return topics, nil
}
