package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emery7592/presia-backend/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("TEST_COMPLETION_KEY", "secret")
	c, err := NewClient(Config{BaseURL: srv.URL, APIKeyEnv: "TEST_COMPLETION_KEY", Model: "test-model"})
	require.NoError(t, err)
	return c
}

func TestComplete_FinalText(t *testing.T) {
	var got wireRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"la réponse"}}]}`))
	})

	res, err := c.Complete(context.Background(),
		[]domain.Turn{{Role: domain.RoleSystem, Content: "instruction"}, {Role: domain.RoleUser, Content: "question"}},
		[]domain.ToolDefinition{{Name: "record_unknown_question", Parameters: map[string]any{"type": "object"}}},
	)
	require.NoError(t, err)
	assert.Equal(t, "la réponse", res.Text)
	assert.Empty(t, res.ToolCalls)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "function", got.Tools[0].Type)
	assert.Equal(t, "record_unknown_question", got.Tools[0].Function.Name)
}

func TestComplete_ToolCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"finish_reason":"tool_calls","message":{"role":"assistant","content":"","tool_calls":[{"id":"call_1","type":"function","function":{"name":"record_user_details","arguments":"{\"email\":\"a@b.c\"}"}}]}}]}`))
	})

	res, err := c.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	require.Len(t, res.ToolCalls, 1)
	assert.Equal(t, "call_1", res.ToolCalls[0].ID)
	assert.Equal(t, "record_user_details", res.ToolCalls[0].Name)
	assert.JSONEq(t, `{"email":"a@b.c"}`, res.ToolCalls[0].Arguments)
}

func TestComplete_RetriesServerErrors(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"choices":[{"finish_reason":"stop","message":{"role":"assistant","content":"ok"}}]}`))
	})

	res, err := c.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Text)
	assert.Equal(t, 2, attempts)
}

func TestComplete_ClientErrorDoesNotRetry(t *testing.T) {
	attempts := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	})

	_, err := c.Complete(context.Background(), []domain.Turn{{Role: domain.RoleUser, Content: "hi"}}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv("TEST_COMPLETION_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_COMPLETION_KEY"})
	assert.Error(t, err)
}
