package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/emery7592/presia-backend/internal/domain"
)

// Client calls an OpenAI-compatible chat completions endpoint with function
// calling. It is stateless: the full message list travels on every call.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	client     *http.Client
	maxRetries int
}

// Config configures the completion client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a completion client from the configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	t := cfg.Timeout
	if t == 0 {
		t = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     key,
		model:      cfg.Model,
		client:     &http.Client{Timeout: t},
		maxRetries: 3,
	}, nil
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type wireMessage struct {
	Role       string         `json:"role"`
	Content    string         `json:"content"`
	ToolCallID string         `json:"tool_call_id,omitempty"`
	ToolCalls  []wireToolCall `json:"tool_calls,omitempty"`
}

type wireRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
	Tools    []wireTool    `json:"tools,omitempty"`
}

type wireTool struct {
	Type     string `json:"type"`
	Function struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Parameters  map[string]any `json:"parameters"`
	} `json:"function"`
}

type wireResponse struct {
	Choices []struct {
		FinishReason string      `json:"finish_reason"`
		Message      wireMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the message list and tool definitions, returning either the
// assistant's final text or the tool calls it requested.
func (c *Client) Complete(ctx context.Context, messages []domain.Turn, tools []domain.ToolDefinition) (domain.Completion, error) {
	reqBody := wireRequest{Model: c.model, Messages: encodeMessages(messages), Tools: encodeTools(tools)}
	data, err := json.Marshal(reqBody)
	if err != nil {
		return domain.Completion{}, fmt.Errorf("encode completion request: %w", err)
	}
	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay(attempt - 1)):
			case <-ctx.Done():
				return domain.Completion{}, ctx.Err()
			}
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return domain.Completion{}, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		payload, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("completion request failed: %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 300 {
			return domain.Completion{}, fmt.Errorf("completion request failed: %s", resp.Status)
		}
		return decodeResponse(payload)
	}
	return domain.Completion{}, fmt.Errorf("completion request exhausted retries: %w", lastErr)
}

func decodeResponse(payload []byte) (domain.Completion, error) {
	var out wireResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return domain.Completion{}, fmt.Errorf("decode completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return domain.Completion{}, fmt.Errorf("completion response has no choices")
	}
	choice := out.Choices[0]
	if choice.FinishReason == "tool_calls" || len(choice.Message.ToolCalls) > 0 {
		calls := make([]domain.ToolCall, 0, len(choice.Message.ToolCalls))
		for _, tc := range choice.Message.ToolCalls {
			calls = append(calls, domain.ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
		}
		return domain.Completion{ToolCalls: calls}, nil
	}
	return domain.Completion{Text: choice.Message.Content}, nil
}

func encodeMessages(messages []domain.Turn) []wireMessage {
	out := make([]wireMessage, len(messages))
	for i, m := range messages {
		wm := wireMessage{Role: string(m.Role), Content: m.Content, ToolCallID: m.ToolCallID}
		for _, tc := range m.ToolCalls {
			wtc := wireToolCall{ID: tc.ID, Type: "function"}
			wtc.Function.Name = tc.Name
			wtc.Function.Arguments = tc.Arguments
			wm.ToolCalls = append(wm.ToolCalls, wtc)
		}
		out[i] = wm
	}
	return out
}

func encodeTools(tools []domain.ToolDefinition) []wireTool {
	out := make([]wireTool, len(tools))
	for i, t := range tools {
		wt := wireTool{Type: "function"}
		wt.Function.Name = t.Name
		wt.Function.Description = t.Description
		wt.Function.Parameters = t.Parameters
		out[i] = wt
	}
	return out
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	base := 500 * time.Millisecond
	// exponential backoff capped at 8s
	d := base << attempt
	if d > 8*time.Second {
		d = 8 * time.Second
	}
	return d
}
