package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DummyGenerator is a lightweight model implementation useful for local runs
// without API calls. It echoes the last non-empty line of the final turn.
type DummyGenerator struct {
	Prefix string
}

func NewDummyGenerator(prefix string) *DummyGenerator {
	if strings.TrimSpace(prefix) == "" {
		prefix = "Dummy response:"
	}
	return &DummyGenerator{Prefix: prefix}
}

func (d *DummyGenerator) Generate(_ context.Context, turns []Turn) (string, error) {
	var prompt string
	if len(turns) > 0 {
		prompt = turns[len(turns)-1].Content
	}
	lines := strings.Split(prompt, "\n")
	var last string
	for i := len(lines) - 1; i >= 0; i-- {
		candidate := strings.TrimSpace(lines[i])
		if candidate != "" {
			last = candidate
			break
		}
	}
	if last == "" {
		last = "<empty prompt>"
	}
	return fmt.Sprintf("%s %s", d.Prefix, last), nil
}

var _ Generator = (*DummyGenerator)(nil)

// ScriptedGenerator replays canned responses in order. It exists for tests and
// offline demos: each Generate call pops the next script entry (or returns the
// next queued error) and records the turns it was called with.
type ScriptedGenerator struct {
	mu        sync.Mutex
	script    []any // string responses or error values, consumed in order
	calls     [][]Turn
	scriptPos int
}

// NewScriptedGenerator builds a generator that replays entries; each entry is
// either a string (a response) or an error (a failed call).
func NewScriptedGenerator(entries ...any) *ScriptedGenerator {
	return &ScriptedGenerator{script: entries}
}

func (s *ScriptedGenerator) Generate(ctx context.Context, turns []Turn) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := make([]Turn, len(turns))
	copy(copied, turns)
	s.calls = append(s.calls, copied)

	if s.scriptPos >= len(s.script) {
		return "", fmt.Errorf("scripted generator exhausted after %d calls", len(s.script))
	}
	entry := s.script[s.scriptPos]
	s.scriptPos++

	switch v := entry.(type) {
	case string:
		return v, nil
	case error:
		return "", v
	default:
		return "", fmt.Errorf("scripted generator: unsupported entry %T", entry)
	}
}

// Calls returns a snapshot of the turn lists passed to Generate so far.
func (s *ScriptedGenerator) Calls() [][]Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]Turn, len(s.calls))
	copy(out, s.calls)
	return out
}

var _ Generator = (*ScriptedGenerator)(nil)
