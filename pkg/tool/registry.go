package tool

import (
	"context"
	"sort"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/genai"
)

var errToolNotFound = goerr.New("tool not found")

// Registry maps function-call names to tools and aggregates their specs
type Registry struct {
	tools    map[string]Tool
	allTools []Tool
}

// New creates a registry with the given tools
func New(tools ...Tool) *Registry {
	r := &Registry{
		tools:    make(map[string]Tool),
		allTools: tools,
	}

	for _, t := range tools {
		spec := t.Spec()
		if spec == nil {
			continue
		}
		for _, fd := range spec.FunctionDeclarations {
			r.tools[fd.Name] = t
		}
	}

	return r
}

// Specs returns all tool specifications for Gemini function calling
func (r *Registry) Specs() []*genai.Tool {
	specs := make([]*genai.Tool, 0, len(r.allTools))
	for _, t := range r.allTools {
		if spec := t.Spec(); spec != nil {
			specs = append(specs, spec)
		}
	}
	return specs
}

// Names returns the registered function names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prompts returns all tool prompts concatenated
func (r *Registry) Prompts(ctx context.Context) string {
	var prompts []string
	for _, t := range r.allTools {
		if p := t.Prompt(ctx); p != "" {
			prompts = append(prompts, p)
		}
	}
	return strings.Join(prompts, "\n\n")
}

// Execute dispatches the function call to the owning tool
func (r *Registry) Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error) {
	t, ok := r.tools[fc.Name]
	if !ok {
		return nil, goerr.Wrap(errToolNotFound, "unknown function call", goerr.V("name", fc.Name))
	}

	return t.Execute(ctx, fc)
}
