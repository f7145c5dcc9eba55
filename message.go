package govseek

import "context"

// Role identifies the author of a conversation message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// ToolCall is a model-issued request to invoke a named capability before
// producing a final answer.
type ToolCall struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Query string `json:"query"`
}

// Message is one entry in a conversation thread. Histories are append-only
// and owned exclusively by one thread.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`

	// Sources carries the attributed source URLs on final assistant messages.
	Sources []string `json:"sources,omitempty"`
}

// Thread is an isolated, ordered message history identified by an opaque id.
// It is independent of OS-level threads.
type Thread struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`

	// LastSources holds the sources collected on the most recent turn.
	LastSources []string `json:"lastSources,omitempty"`
}

// ThreadStore loads and saves conversation threads keyed by thread id.
// Access to a single thread must be serialized by the caller; different
// threads are independent.
type ThreadStore interface {
	// Load returns a copy of the thread, creating an empty one if it does
	// not exist. Mutations to the copy are invisible until Save.
	Load(ctx context.Context, threadID string) (*Thread, error)

	// Save persists the thread.
	Save(ctx context.Context, thread *Thread) error
}

// RetrievedDocument is a similarity-search hit. It exists only within a
// single orchestration turn and is never persisted.
type RetrievedDocument struct {
	Text   string
	Source string
}

// SearchService is the external similarity-search service.
type SearchService interface {
	// Search returns the k most relevant documents for the query,
	// ranked by relevance descending.
	Search(ctx context.Context, query string, k int) ([]RetrievedDocument, error)
}

// Embedder is the external embedding provider: text to fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ToolDefinition describes a capability offered to the completion service.
type ToolDefinition struct {
	Name        string
	Description string
}

// Completion is the completion service's response to a message history.
// A non-empty ToolCalls means the service wants tools run before answering.
type Completion struct {
	Text      string
	ToolCalls []ToolCall
}

// Completer is the external completion service.
type Completer interface {
	Complete(ctx context.Context, messages []Message, tools []ToolDefinition) (*Completion, error)
}
