// Package searchtool defines the capabilities the language model may call
// while answering a query, and the registry that dispatches its tool
// requests.
package searchtool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
)

// ErrUnknownTool reports a model request for a capability that was never
// registered.
var ErrUnknownTool = errors.New("unknown tool")

// Outcome is the result of one tool invocation: the text fed back to the
// model, plus the provenance labels surfaced to the end caller. Sources are
// an explicit return value so concurrent queries never share tool state.
type Outcome struct {
	Text    string
	Sources []string
}

// Tool is a capability the model can invoke by name with JSON arguments.
type Tool interface {
	Name() string
	Definition() openai.ChatCompletionToolParam
	Execute(ctx context.Context, args json.RawMessage) (*Outcome, error)
}

// Registry holds the registered tools and dispatches execution requests.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry creates a registry over the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{
		tools:  tools,
		byName: make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		r.byName[t.Name()] = t
	}
	return r
}

// Definitions returns the tool schemas declared to the model.
func (r *Registry) Definitions() []openai.ChatCompletionToolParam {
	defs := make([]openai.ChatCompletionToolParam, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	return defs
}

// Execute validates the requested name and runs the matching tool.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (*Outcome, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}
	return t.Execute(ctx, args)
}
