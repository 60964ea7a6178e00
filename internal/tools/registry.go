package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/emery7592/presia-backend/internal/domain"
)

// Registry is the closed set of tools exposed to the completion service.
// Tools are registered explicitly at construction; dispatch never resolves
// names against anything outside this set.
type Registry struct {
	ordered []domain.Tool
	byName  map[string]domain.Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names are a
// configuration error.
func NewRegistry(list ...domain.Tool) (*Registry, error) {
	r := &Registry{byName: make(map[string]domain.Tool, len(list))}
	for _, tool := range list {
		name := tool.Definition().Name
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("duplicate tool %q", name)
		}
		r.byName[name] = tool
		r.ordered = append(r.ordered, tool)
	}
	return r, nil
}

// Definitions returns the tool definitions in registration order.
func (r *Registry) Definitions() []domain.ToolDefinition {
	out := make([]domain.ToolDefinition, len(r.ordered))
	for i, tool := range r.ordered {
		out[i] = tool.Definition()
	}
	return out
}

// Execute runs the named tool with the call's JSON arguments.
func (r *Registry) Execute(ctx context.Context, call domain.ToolCall) (string, error) {
	tool, ok := r.byName[call.Name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}
	return tool.Execute(ctx, json.RawMessage(call.Arguments))
}
