package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emery7592/presia-backend/internal/domain"
	"github.com/emery7592/presia-backend/internal/tools"
)

// ErrToolLoopExceeded means the completion service kept requesting tool calls
// past the safety cap. The loop aborts rather than spin forever.
var ErrToolLoopExceeded = errors.New("tool call loop exceeded safety cap")

// Loop drives a single chat exchange through the completion service,
// executing requested tool calls until a final answer is produced or the
// round cap is hit.
type Loop struct {
	client    domain.CompletionClient
	registry  *tools.Registry
	maxRounds int
	log       *zap.Logger
}

// NewLoop creates a conversation loop. maxRounds caps completion round trips
// per exchange.
func NewLoop(client domain.CompletionClient, registry *tools.Registry, maxRounds int, log *zap.Logger) *Loop {
	if maxRounds <= 0 {
		maxRounds = 5
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{client: client, registry: registry, maxRounds: maxRounds, log: log}
}

// Run executes one exchange: [system instruction] + history + [user message].
// Tool calls append the assistant's tool-call turn plus one tool-result turn
// per call, then the completion service is asked again.
func (l *Loop) Run(ctx context.Context, instruction string, history []domain.Turn, message string) (string, error) {
	messages := make([]domain.Turn, 0, len(history)+2)
	messages = append(messages, domain.Turn{Role: domain.RoleSystem, Content: instruction})
	messages = append(messages, history...)
	messages = append(messages, domain.Turn{Role: domain.RoleUser, Content: message})

	defs := l.registry.Definitions()
	for round := 0; round < l.maxRounds; round++ {
		completion, err := l.client.Complete(ctx, messages, defs)
		if err != nil {
			return "", fmt.Errorf("completion round %d: %w", round+1, err)
		}
		if len(completion.ToolCalls) == 0 {
			return completion.Text, nil
		}

		messages = append(messages, domain.Turn{Role: domain.RoleAssistant, ToolCalls: completion.ToolCalls})
		for _, call := range completion.ToolCalls {
			result, err := l.registry.Execute(ctx, call)
			if err != nil {
				// The tool turn must exist for every requested call or the
				// transcript becomes invalid; report failure in-band.
				l.log.Warn("tool execution failed",
					zap.String("tool", call.Name), zap.Error(err))
				result = `{"error": "tool execution failed"}`
			}
			messages = append(messages, domain.Turn{
				Role:       domain.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
			})
		}
	}
	return "", ErrToolLoopExceeded
}
