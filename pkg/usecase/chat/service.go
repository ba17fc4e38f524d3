// Package chat drives the tool-augmented conversation loop: per-session
// history, a bounded number of function-call round-trips against the
// retrieval tool, and a final natural-language answer.
package chat

import (
	"context"
	_ "embed"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/invo/pkg/adapter"
	"github.com/m-mizutani/invo/pkg/tool"
	"github.com/m-mizutani/invo/pkg/utils/logging"
	"google.golang.org/genai"
)

//go:embed prompt/system.md
var systemPromptRaw string

const (
	// DefaultSessionID is used when the caller does not name a session
	DefaultSessionID = "default"

	// defaultMaxIterations bounds tool-call round-trips within one turn
	defaultMaxIterations = 5

	defaultTurnTimeout = 2 * time.Minute
)

// incompleteAnswer is surfaced when the loop hits the iteration cap without
// producing any text
const incompleteAnswer = "I could not complete the request within the allowed number of tool calls. Please try a more specific question."

// Service answers questions about invoices through a tool-calling agent,
// keeping one ordered history per session identifier
type Service struct {
	gemini   adapter.Gemini
	registry *tool.Registry
	sessions *sessionStore

	maxIterations int
	turnTimeout   time.Duration
	temperature   float32
}

type Option func(*Service)

// WithMaxIterations overrides the tool-call iteration cap
func WithMaxIterations(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxIterations = n
		}
	}
}

// WithTurnTimeout overrides the per-turn deadline for the agent loop
func WithTurnTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.turnTimeout = d
		}
	}
}

// New constructs the chat service. Dependencies are validated here so a
// misconfigured process fails at startup, not on the first question.
func New(gemini adapter.Gemini, registry *tool.Registry, opts ...Option) (*Service, error) {
	if gemini == nil {
		return nil, goerr.New("gemini adapter is required")
	}
	if registry == nil {
		return nil, goerr.New("tool registry is required")
	}

	s := &Service{
		gemini:        gemini,
		registry:      registry,
		sessions:      newSessionStore(),
		maxIterations: defaultMaxIterations,
		turnTimeout:   defaultTurnTimeout,
		temperature:   0.3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ask runs one conversation turn for the session: prior history plus the new
// question go through the agent loop, and the completed turn is appended to
// the session history. Concurrent calls for the same session are serialized.
func (s *Service) Ask(ctx context.Context, sessionID, question string) (string, error) {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}

	sess := s.sessions.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.turnTimeout)
	defer cancel()

	answer, err := s.runAgentLoop(ctx, sess.history(), question)
	if err != nil {
		return "", goerr.Wrap(err, "agent loop failed", goerr.V("session_id", sessionID))
	}

	sess.append(question, answer)
	return answer, nil
}

// HistoryLen reports how many contents the session currently holds
func (s *Service) HistoryLen(sessionID string) int {
	if sessionID == "" {
		sessionID = DefaultSessionID
	}
	sess := s.sessions.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return len(sess.contents)
}

func (s *Service) runAgentLoop(ctx context.Context, history []*genai.Content, question string) (string, error) {
	logger := logging.From(ctx)

	systemPrompt := systemPromptRaw
	if extra := s.registry.Prompts(ctx); extra != "" {
		systemPrompt += "\n\n" + extra
	}

	temperature := s.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, ""),
		Temperature:       &temperature,
		Tools:             s.registry.Specs(),
	}

	contents := append(history, genai.NewContentFromText(question, genai.RoleUser))

	var answer strings.Builder
	for i := 0; i < s.maxIterations; i++ {
		resp, err := s.gemini.GenerateContent(ctx, contents, config)
		if err != nil {
			return "", goerr.Wrap(err, "failed to generate content", goerr.V("iteration", i))
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			break
		}

		content := resp.Candidates[0].Content
		contents = append(contents, content)

		var functionResponses []*genai.Part
		for _, part := range content.Parts {
			if part.Text != "" {
				answer.WriteString(part.Text)
			}
			if part.FunctionCall == nil {
				continue
			}

			logger.Debug("tool call", "name", part.FunctionCall.Name, "iteration", i)
			funcResp, execErr := s.registry.Execute(ctx, *part.FunctionCall)
			if execErr != nil {
				logger.Warn("tool execution failed", "name", part.FunctionCall.Name, "error", execErr)
				funcResp = &genai.FunctionResponse{
					Name:     part.FunctionCall.Name,
					Response: map[string]any{"error": execErr.Error()},
				}
			}
			functionResponses = append(functionResponses, &genai.Part{FunctionResponse: funcResp})
		}

		if len(functionResponses) == 0 {
			// Final answer, no more tool calls
			return answer.String(), nil
		}

		contents = append(contents, &genai.Content{
			Role:  genai.RoleUser,
			Parts: functionResponses,
		})

		// Text accumulated before a tool call is reasoning, not the answer
		answer.Reset()
	}

	if answer.Len() > 0 {
		return answer.String(), nil
	}
	return incompleteAnswer, nil
}
