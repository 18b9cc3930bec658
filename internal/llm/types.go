// Package llm provides types for OpenAI-compatible chat completion APIs.
package llm

import "fmt"

// Role is the author of a message.
type Role int

const (
	System Role = iota
	User
	Assistant
)

// String returns the wire token for r.
func (r Role) String() string {
	switch r {
	case System:
		return "system"
	case User:
		return "user"
	case Assistant:
		return "assistant"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	switch r {
	case System, User, Assistant:
		return []byte(r.String()), nil
	}
	return nil, fmt.Errorf("invalid role %d", int(r))
}

// ParseRole maps a wire token back to a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case "system":
		return System, nil
	case "user":
		return User, nil
	case "assistant":
		return Assistant, nil
	}
	return 0, fmt.Errorf("unknown role %q", s)
}

// Message is a single turn of a conversation. Role is kept as a plain
// string so replies with roles this client does not know still parse.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewMessage builds a Message from a typed role.
func NewMessage(role Role, content string) Message {
	return Message{Role: role.String(), Content: content}
}

// CompletionRequest is the request body for the chat completions endpoint.
type CompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// CompletionChoice is a single completion choice.
type CompletionChoice struct {
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
	Index        int64   `json:"index"`
}

// Usage tracks token counts.
type Usage struct {
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
	TotalTokens      int64 `json:"total_tokens"`
}

// CompletionResponse is the response from the chat completions endpoint.
type CompletionResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Usage   Usage              `json:"usage"`
	Choices []CompletionChoice `json:"choices"`
}
