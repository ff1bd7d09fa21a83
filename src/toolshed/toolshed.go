// Package toolshed is the built-in catalog of financial-calculation tools
// the fusion pipeline ranks. Each tool carries a descriptive spec used to
// build its index document and a real formula behind Invoke.
package toolshed

import (
	"context"
	"fmt"
	"strconv"

	fusion "github.com/toolshed-ai/toolfusion"
)

// calcTool wraps a numeric formula as a fusion.Tool.
type calcTool struct {
	spec fusion.ToolSpec
	fn   func(args map[string]any) (float64, error)
}

func (t *calcTool) Spec() fusion.ToolSpec { return t.spec }

func (t *calcTool) Invoke(_ context.Context, args map[string]any) (string, error) {
	v, err := t.fn(args)
	if err != nil {
		return "", fmt.Errorf("%s: %w", t.spec.Name, err)
	}
	return strconv.FormatFloat(v, 'f', -1, 64), nil
}

func numberSchema(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func arraySchema(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "number"},
		"description": description,
	}
}

func objectSchema(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func floatArg(args map[string]any, name string) (float64, error) {
	v, ok := args[name]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", name)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("argument %q is not a number", name)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("argument %q is not a number", name)
	}
}

func floatsArg(args map[string]any, name string) ([]float64, error) {
	v, ok := args[name]
	if !ok {
		return nil, fmt.Errorf("missing argument %q", name)
	}
	switch list := v.(type) {
	case []float64:
		return list, nil
	case []any:
		out := make([]float64, len(list))
		for i, item := range list {
			f, ok := item.(float64)
			if !ok {
				return nil, fmt.Errorf("argument %q element %d is not a number", name, i)
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %q is not a number array", name)
	}
}

// Catalog returns a StaticToolCatalog populated with every built-in tool.
func Catalog() *fusion.StaticToolCatalog {
	return fusion.NewStaticToolCatalog(All())
}
