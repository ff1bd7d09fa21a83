package models

import (
	"context"
	"fmt"
)

// NewGenerator returns a concrete Generator for the named provider.
func NewGenerator(ctx context.Context, provider, model string) (Generator, error) {
	switch provider {
	case "openai":
		return NewOpenAIGenerator(model), nil
	case "gemini", "google":
		return NewGeminiGenerator(ctx, model)
	case "ollama":
		return NewOllamaGenerator(model)
	case "anthropic", "claude":
		return NewAnthropicGenerator(model), nil
	case "dummy":
		return NewDummyGenerator(""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
