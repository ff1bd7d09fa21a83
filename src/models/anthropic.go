package models

import (
	"context"
	"os"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicGenerator implements Generator using Anthropic's Messages API.
type AnthropicGenerator struct {
	Client    *anthropic.Client
	Model     string
	MaxTokens int
}

// NewAnthropicGenerator constructs a client. It reads ANTHROPIC_API_KEY from the env.
func NewAnthropicGenerator(model string) *AnthropicGenerator {
	key := os.Getenv("ANTHROPIC_API_KEY")
	cl := anthropic.NewClient(
		anthropicopt.WithAPIKey(key),
	)
	return &AnthropicGenerator{
		Client:    &cl,
		Model:     model,
		MaxTokens: 2048,
	}
}

func (a *AnthropicGenerator) Generate(ctx context.Context, turns []Turn) (string, error) {
	// Anthropic keeps system text outside the message list.
	var system []anthropic.TextBlockParam
	var messages []anthropic.MessageParam
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: t.Content})
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	msg, err := a.Client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.Model),
		MaxTokens: int64(a.MaxTokens),
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}

var _ Generator = (*AnthropicGenerator)(nil)
