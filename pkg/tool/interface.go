package tool

import (
	"context"

	"google.golang.org/genai"
)

// Tool is an external capability the LLM can call via function calling
type Tool interface {
	// Spec returns the tool specification for Gemini function calling
	Spec() *genai.Tool

	// Execute runs the tool with the given function call and returns the response
	Execute(ctx context.Context, fc genai.FunctionCall) (*genai.FunctionResponse, error)

	// Prompt returns additional instructions appended to the system prompt.
	// Returns empty string if the tool has nothing to add.
	Prompt(ctx context.Context) string
}
