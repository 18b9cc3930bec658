// Package render prints completion replies to the terminal.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/tnglemongrass/gptcli/internal/llm"
)

// Renderer renders replies as markdown.
type Renderer struct {
	gr     *glamour.TermRenderer
	writer io.Writer
}

// Option configures a Renderer.
type Option func(*options)

type options struct {
	style string
}

// WithStyle selects a fixed glamour style ("dark", "light", "notty", ...)
// instead of detecting one from the terminal.
func WithStyle(style string) Option {
	return func(o *options) {
		o.style = style
	}
}

// NewRenderer creates a Renderer writing to the given writer.
// If w is nil, os.Stdout is used.
func NewRenderer(w io.Writer, opts ...Option) (*Renderer, error) {
	if w == nil {
		w = os.Stdout
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	style := glamour.WithAutoStyle()
	if o.style != "" {
		style = glamour.WithStandardStyle(o.style)
	}
	gr, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(100))
	if err != nil {
		return nil, fmt.Errorf("create glamour renderer: %w", err)
	}
	return &Renderer{gr: gr, writer: w}, nil
}

// Choices writes every choice in response order, each under a
// "ChatGPT [index]:" header.
func (r *Renderer) Choices(resp *llm.CompletionResponse) error {
	for _, choice := range resp.Choices {
		out, err := r.gr.Render(choice.Message.Content)
		if err != nil {
			return fmt.Errorf("render choice %d: %w", choice.Index, err)
		}
		if _, err := fmt.Fprintf(r.writer, "\nChatGPT [%d]: %s\n", choice.Index, strings.TrimSpace(out)); err != nil {
			return err
		}
	}
	return nil
}

// Usage writes a one-line token summary.
func (r *Renderer) Usage(resp *llm.CompletionResponse) error {
	u := resp.Usage
	_, err := fmt.Fprintf(r.writer, "\n[%s] tokens: prompt=%d completion=%d total=%d\n",
		resp.Model, u.PromptTokens, u.CompletionTokens, u.TotalTokens)
	return err
}
