package models

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// ---------------------------- Ollama -----------------------------------------

type OllamaGenerator struct {
	Client *ollama.Client
	Model  string
}

func NewOllamaGenerator(model string) (*OllamaGenerator, error) {
	host := os.Getenv("OLLAMA_HOST")
	if host == "" {
		host = "http://localhost:11434"
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid OLLAMA_HOST %q: %w", host, err)
	}

	httpClient := &http.Client{
		Timeout: 120 * time.Second,
	}

	return &OllamaGenerator{
		Client: ollama.NewClient(u, httpClient),
		Model:  model,
	}, nil
}

func (o *OllamaGenerator) Generate(ctx context.Context, turns []Turn) (string, error) {
	messages := make([]ollama.Message, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, ollama.Message{
			Role:    string(t.Role),
			Content: t.Content,
		})
	}

	stream := false
	req := &ollama.ChatRequest{
		Model:    o.Model,
		Messages: messages,
		Stream:   &stream,
	}

	var text strings.Builder
	if err := o.Client.Chat(ctx, req, func(cr ollama.ChatResponse) error {
		if cr.Message.Content != "" {
			text.WriteString(cr.Message.Content)
		}
		return nil
	}); err != nil {
		return "", err
	}

	return text.String(), nil
}

var _ Generator = (*OllamaGenerator)(nil)
