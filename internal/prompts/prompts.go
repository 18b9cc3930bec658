// Package prompts builds the conversation sent for a single prompt.
package prompts

import (
	"strings"

	"github.com/tnglemongrass/gptcli/internal/llm"
)

// Conversation returns the messages for one request: an optional system
// message followed by the user's input with its line terminator removed.
func Conversation(system, input string) []llm.Message {
	var msgs []llm.Message
	if system != "" {
		msgs = append(msgs, llm.NewMessage(llm.System, system))
	}
	return append(msgs, llm.NewMessage(llm.User, TrimNewline(input)))
}

// TrimNewline removes a single trailing "\n" or "\r\n".
func TrimNewline(s string) string {
	if !strings.HasSuffix(s, "\n") {
		return s
	}
	return strings.TrimSuffix(s[:len(s)-1], "\r")
}
