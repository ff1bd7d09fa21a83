package fusion

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	utcp "github.com/universal-tool-calling-protocol/go-utcp"
)

// ToolSpec describes a catalog entry: what the tool is called, what it
// does, and the argument schema used to build its index document.
type ToolSpec struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema,omitempty"`
}

// Tool exposes structured metadata and an invocation handler.
type Tool interface {
	Spec() ToolSpec
	Invoke(ctx context.Context, args map[string]any) (string, error)
}

// ToolCatalog maintains an ordered set of tools and provides lookup by name.
type ToolCatalog interface {
	Register(tool Tool) error
	Lookup(name string) (Tool, ToolSpec, bool)
	Specs() []ToolSpec
	Tools() []Tool
}

// ParamStrings renders the schema's properties as "name: description"
// fragments, sorted by property name for a stable document text.
func (s ToolSpec) ParamStrings() []string {
	props, ok := s.InputSchema["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]string, 0, len(names))
	for _, name := range names {
		desc := ""
		if p, ok := props[name].(map[string]any); ok {
			if d, ok := p["description"].(string); ok {
				desc = d
			}
		}
		if desc == "" {
			out = append(out, name)
			continue
		}
		out = append(out, fmt.Sprintf("%s: %s", name, desc))
	}
	return out
}

// StaticToolCatalog is the default in-memory ToolCatalog.
type StaticToolCatalog struct {
	mu    sync.RWMutex
	tools map[string]Tool
	specs map[string]ToolSpec
	order []string
}

// NewStaticToolCatalog constructs a catalog seeded with the provided tools.
// Invalid entries are skipped silently.
func NewStaticToolCatalog(tools []Tool) *StaticToolCatalog {
	catalog := &StaticToolCatalog{
		tools: make(map[string]Tool),
		specs: make(map[string]ToolSpec),
	}
	for _, tool := range tools {
		_ = catalog.Register(tool)
	}
	return catalog
}

// Register adds a tool to the catalog using a lower-cased key. Duplicate
// names return an error.
func (c *StaticToolCatalog) Register(tool Tool) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	spec := tool.Spec()
	key := strings.ToLower(strings.TrimSpace(spec.Name))
	if key == "" {
		return fmt.Errorf("tool name is empty")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.tools[key]; exists {
		return fmt.Errorf("tool %s already registered", spec.Name)
	}
	c.tools[key] = tool
	c.specs[key] = spec
	c.order = append(c.order, key)
	return nil
}

// Lookup returns the tool and its specification if present.
func (c *StaticToolCatalog) Lookup(name string) (Tool, ToolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	tool, ok := c.tools[key]
	if !ok {
		return nil, ToolSpec{}, false
	}
	return tool, c.specs[key], true
}

// Specs returns a snapshot of the tool specifications in registration order.
func (c *StaticToolCatalog) Specs() []ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		specs = append(specs, c.specs[key])
	}
	return specs
}

// Tools returns the registered tools in order.
func (c *StaticToolCatalog) Tools() []Tool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tools := make([]Tool, 0, len(c.order))
	for _, key := range c.order {
		tools = append(tools, c.tools[key])
	}
	return tools
}

// UTCPCatalog exposes the tools a UTCP client discovered as a read-only
// ToolCatalog. Limit bounds how many tools one listing fetches.
type UTCPCatalog struct {
	Client utcp.UtcpClientInterface
	Limit  int
}

func NewUTCPCatalog(client utcp.UtcpClientInterface) *UTCPCatalog {
	return &UTCPCatalog{Client: client, Limit: 50}
}

// Register is unsupported; UTCP providers own their tool listings.
func (c *UTCPCatalog) Register(Tool) error {
	return fmt.Errorf("utcp catalog is read-only")
}

func (c *UTCPCatalog) Lookup(name string) (Tool, ToolSpec, bool) {
	for _, tool := range c.Tools() {
		spec := tool.Spec()
		if strings.EqualFold(spec.Name, name) {
			return tool, spec, true
		}
	}
	return nil, ToolSpec{}, false
}

func (c *UTCPCatalog) Specs() []ToolSpec {
	tools := c.Tools()
	specs := make([]ToolSpec, len(tools))
	for i, tool := range tools {
		specs[i] = tool.Spec()
	}
	return specs
}

func (c *UTCPCatalog) Tools() []Tool {
	limit := c.Limit
	if limit <= 0 {
		limit = 50
	}
	discovered, err := c.Client.SearchTools("", limit)
	if err != nil {
		return nil
	}
	out := make([]Tool, 0, len(discovered))
	for _, t := range discovered {
		spec := ToolSpec{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: map[string]any{
				"type":       t.Inputs.Type,
				"properties": t.Inputs.Properties,
			},
		}
		out = append(out, &utcpTool{client: c.Client, spec: spec})
	}
	return out
}

type utcpTool struct {
	client utcp.UtcpClientInterface
	spec   ToolSpec
}

func (t *utcpTool) Spec() ToolSpec { return t.spec }

func (t *utcpTool) Invoke(ctx context.Context, args map[string]any) (string, error) {
	result, err := t.client.CallTool(ctx, t.spec.Name, args)
	if err != nil {
		return "", err
	}
	return fmt.Sprint(result), nil
}
