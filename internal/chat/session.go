// Package chat runs a single prompt/reply exchange with the LLM.
package chat

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tnglemongrass/gptcli/internal/config"
	"github.com/tnglemongrass/gptcli/internal/llm"
	"github.com/tnglemongrass/gptcli/internal/prompts"
	"github.com/tnglemongrass/gptcli/internal/render"
)

// Prompt is shown before reading the user's line.
const Prompt = "Prompt => "

// InputReader reads a line of user input. Returns the line and any error (io.EOF on end).
type InputReader func(prompt string) (string, error)

// Completer submits a conversation and returns the parsed reply.
type Completer interface {
	Submit(messages []llm.Message) (*llm.CompletionResponse, error)
}

// Session sends one prompt and prints the reply.
type Session struct {
	cfg      *config.Config
	client   Completer
	renderer *render.Renderer

	// ShowUsage prints token counts after the reply.
	ShowUsage bool
}

// NewSession creates a session from the given configuration.
func NewSession(cfg *config.Config, w io.Writer, logger *slog.Logger, opts ...render.Option) (*Session, error) {
	if w == nil {
		w = os.Stdout
	}
	r, err := render.NewRenderer(w, opts...)
	if err != nil {
		return nil, fmt.Errorf("create renderer: %w", err)
	}
	return &Session{
		cfg:      cfg,
		client:   llm.NewClient(cfg.OpenAI, llm.WithLogger(logger)),
		renderer: r,
	}, nil
}

// Run reads one line, submits it and renders every choice. An io.EOF
// from readInput ends the session without a request.
func (s *Session) Run(readInput InputReader) error {
	input, err := readInput(Prompt)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read input: %w", err)
	}

	resp, err := s.client.Submit(prompts.Conversation(s.cfg.OpenAI.SystemPrompt, input))
	if err != nil {
		return err
	}
	if err := s.renderer.Choices(resp); err != nil {
		return err
	}
	if s.ShowUsage {
		return s.renderer.Usage(resp)
	}
	return nil
}
