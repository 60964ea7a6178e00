package domain

import (
	"context"
	"encoding/json"
)

// Embedder converts free text into fixed-dimension numeric vectors.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Chunker splits a document's extracted pages into retrieval chunks.
type Chunker interface {
	Chunk(pages []string) ([]DocumentChunk, error)
}

// Retriever selects and assembles a character-budgeted context string for a
// query. Failures degrade to a placeholder result rather than an error.
type Retriever interface {
	GetContext(ctx context.Context, query string, maxChars int) ContextResult
}

// CompletionClient is the stateless call to the hosted language model with
// function calling. It returns either final text or requested tool calls.
type CompletionClient interface {
	Complete(ctx context.Context, messages []Turn, tools []ToolDefinition) (Completion, error)
}

// Tool executes one side-effecting function requested by the model and
// returns its result as the tool turn's content.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, arguments json.RawMessage) (string, error)
}

// Notifier delivers a fire-and-forget push notification. Failures are logged
// by callers, never retried, and never block the conversation.
type Notifier interface {
	Push(ctx context.Context, message string) error
}
