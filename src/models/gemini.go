package models

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ---------------------------- Google Gemini ----------------------------------

type GeminiGenerator struct {
	Client *genai.Client
	Model  string
}

func NewGeminiGenerator(ctx context.Context, model string) (*GeminiGenerator, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini init: %w", err)
	}
	return &GeminiGenerator{Client: client, Model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, turns []Turn) (string, error) {
	model := g.Client.GenerativeModel(g.Model)

	var system []genai.Part
	var history []*genai.Content
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			system = append(system, genai.Text(t.Content))
		case RoleAssistant:
			history = append(history, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(t.Content)}})
		default:
			history = append(history, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(t.Content)}})
		}
	}
	if len(system) > 0 {
		model.SystemInstruction = &genai.Content{Parts: system}
	}
	if len(history) == 0 {
		return "", errors.New("gemini: no user content")
	}

	// Gemini wants the final user turn sent through the chat session; everything
	// before it becomes history.
	last := history[len(history)-1]
	cs := model.StartChat()
	cs.History = history[:len(history)-1]

	var lastText strings.Builder
	for _, p := range last.Parts {
		if txt, ok := p.(genai.Text); ok {
			lastText.WriteString(string(txt))
		}
	}

	resp, err := cs.SendMessage(ctx, genai.Text(lastText.String()))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty response")
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if txt, ok := p.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String(), nil
}

var _ Generator = (*GeminiGenerator)(nil)
