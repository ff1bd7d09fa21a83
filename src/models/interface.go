package models

import "context"

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in the prompt sent to a generator. The fusion
// modules build multi-turn prompts (for example re-presenting a reasoning
// pass as an assistant turn before asking for structured extraction), so the
// port works on ordered turns rather than one flat prompt string.
type Turn struct {
	Role    Role
	Content string
}

// Generator is a pluggable language-generation backend.
type Generator interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}

// System builds a system turn.
func System(content string) Turn { return Turn{Role: RoleSystem, Content: content} }

// User builds a user turn.
func User(content string) Turn { return Turn{Role: RoleUser, Content: content} }

// Assistant builds an assistant turn.
func Assistant(content string) Turn { return Turn{Role: RoleAssistant, Content: content} }
