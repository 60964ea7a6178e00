package domain

// DocumentChunk is a bounded span of document text, the unit of retrieval.
// Chunks are created once during chunking and never mutated afterwards.
type DocumentChunk struct {
	Content    string `json:"content"`
	PageNumber int    `json:"page_number"`
	ChunkID    int    `json:"chunk_id"`
}

// SearchResult is a chunk matched by a similarity query with its cosine score.
type SearchResult struct {
	Chunk DocumentChunk
	Score float64
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a structured request from the completion service to run a named
// tool before generation continues. Arguments is the raw JSON payload.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Turn is one message of a conversation. The core appends turns but does not
// persist them; history lifetime is the caller's responsibility.
type Turn struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
}

// TopicRule maps keyword sets to a named topic and a response directive.
// Rules are static configuration; declaration order is significant because
// the first matching rule wins.
type TopicRule struct {
	Name                  string   `yaml:"name"`
	Keywords              []string `yaml:"keywords"`
	RequiresClarification bool     `yaml:"requires_clarification"`
	ClarificationPrompt   string   `yaml:"clarification_prompt,omitempty"`
	Directive             string   `yaml:"directive"`
}

// ContextResult is the outcome of a context retrieval. A degraded result
// carries placeholder text and the cause; it is never treated as fatal
// because context is an enrichment, not a correctness requirement.
type ContextResult struct {
	Text     string
	Degraded bool
	Err      error
}

// ToolDefinition describes one callable tool to the completion service.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Completion is the completion service's answer: either final text or a set
// of tool calls to execute before asking again.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}
