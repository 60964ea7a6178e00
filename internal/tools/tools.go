package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/emery7592/presia-backend/internal/domain"
	"github.com/emery7592/presia-backend/internal/leadstore"
)

// RecordUserDetails records that a user wants to be contacted and provided an
// email address. The lead is persisted and a push notification is sent;
// notification failures are logged, never surfaced to the conversation.
type RecordUserDetails struct {
	Store    *leadstore.Store
	Notifier domain.Notifier
	Log      *zap.Logger
}

// Definition describes the tool to the completion service.
func (t *RecordUserDetails) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "record_user_details",
		Description: "Use this tool to record that a user is interested in being in touch and provided an email address",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"email": map[string]any{"type": "string", "description": "The email address of this user"},
				"name":  map[string]any{"type": "string", "description": "The user's name, if provided"},
				"notes": map[string]any{"type": "string", "description": "Contextual notes"},
			},
			"required":             []string{"email"},
			"additionalProperties": false,
		},
	}
}

// Execute parses the arguments, persists the lead and notifies.
func (t *RecordUserDetails) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var args struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Notes string `json:"notes"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return "", fmt.Errorf("record_user_details arguments: %w", err)
	}
	if args.Email == "" {
		return "", fmt.Errorf("record_user_details: email is required")
	}
	if args.Name == "" {
		args.Name = "Name not provided"
	}
	if args.Notes == "" {
		args.Notes = "not provided"
	}

	if t.Store != nil {
		if _, err := t.Store.RecordLead(ctx, args.Email, args.Name, args.Notes); err != nil {
			return "", err
		}
	}
	t.notify(ctx, fmt.Sprintf("Recording interest from %s (%s): %s", args.Name, args.Email, args.Notes))
	return `{"recorded": "ok"}`, nil
}

func (t *RecordUserDetails) notify(ctx context.Context, message string) {
	if t.Notifier == nil {
		return
	}
	if err := t.Notifier.Push(ctx, message); err != nil && t.Log != nil {
		t.Log.Warn("lead notification failed", zap.Error(err))
	}
}

// RecordUnknownQuestion records a question the assistant could not answer.
type RecordUnknownQuestion struct {
	Store    *leadstore.Store
	Notifier domain.Notifier
	Log      *zap.Logger
}

// Definition describes the tool to the completion service.
func (t *RecordUnknownQuestion) Definition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        "record_unknown_question",
		Description: "Always use this tool to record any question that couldn't be answered",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string", "description": "Unanswered question"},
			},
			"required":             []string{"question"},
			"additionalProperties": false,
		},
	}
}

// Execute parses the arguments, persists the question and notifies.
func (t *RecordUnknownQuestion) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var args struct {
		Question string `json:"question"`
	}
	if err := json.Unmarshal(arguments, &args); err != nil {
		return "", fmt.Errorf("record_unknown_question arguments: %w", err)
	}
	if args.Question == "" {
		return "", fmt.Errorf("record_unknown_question: question is required")
	}

	if t.Store != nil {
		if _, err := t.Store.RecordUnknownQuestion(ctx, args.Question); err != nil {
			return "", err
		}
	}
	if t.Notifier != nil {
		if err := t.Notifier.Push(ctx, fmt.Sprintf("Recording %q asked that I couldn't answer", args.Question)); err != nil && t.Log != nil {
			t.Log.Warn("unknown-question notification failed", zap.Error(err))
		}
	}
	return `{"recorded": "ok"}`, nil
}
