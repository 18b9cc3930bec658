package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tnglemongrass/gptcli/internal/config"
	"github.com/tnglemongrass/gptcli/internal/llm"
	"github.com/tnglemongrass/gptcli/internal/render"
)

const reply = `{"id":"1","object":"chat.completion","created":1,"model":"test-model",
	"usage":{"prompt_tokens":2,"completion_tokens":1,"total_tokens":3},
	"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Hello!"}}]}`

func fakeServer(t *testing.T, got *llm.CompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			json.NewDecoder(r.Body).Decode(got)
		}
		fmt.Fprint(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(serverURL string) *config.Config {
	return &config.Config{OpenAI: config.OpenAI{
		Model:     "test-model",
		AccessKey: "test-key",
		Endpoint:  serverURL,
		Timeout:   5 * time.Second,
	}}
}

func newTestSession(t *testing.T, cfg *config.Config, buf *bytes.Buffer) *Session {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewSession(cfg, buf, logger, render.WithStyle("notty"))
	require.NoError(t, err)
	return s
}

func lineReader(line string) InputReader {
	return func(prompt string) (string, error) {
		return line, nil
	}
}

func TestRun(t *testing.T) {
	var got llm.CompletionRequest
	srv := fakeServer(t, &got)

	var buf bytes.Buffer
	s := newTestSession(t, testConfig(srv.URL), &buf)

	var shown string
	err := s.Run(func(prompt string) (string, error) {
		shown = prompt
		return "hi\n", nil
	})
	require.NoError(t, err)

	assert.Equal(t, Prompt, shown)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, []llm.Message{{Role: "user", Content: "hi"}}, got.Messages)
	assert.Contains(t, buf.String(), "ChatGPT [0]: Hello!")
	assert.NotContains(t, buf.String(), "tokens:")
}

func TestRunSystemPromptAndUsage(t *testing.T) {
	var got llm.CompletionRequest
	srv := fakeServer(t, &got)

	cfg := testConfig(srv.URL)
	cfg.OpenAI.SystemPrompt = "Be brief."

	var buf bytes.Buffer
	s := newTestSession(t, cfg, &buf)
	s.ShowUsage = true

	require.NoError(t, s.Run(lineReader("hi")))
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Contains(t, buf.String(), "total=3")
}

func TestRunEOF(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	var buf bytes.Buffer
	s := newTestSession(t, testConfig(srv.URL), &buf)

	err := s.Run(func(string) (string, error) { return "", io.EOF })
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Empty(t, buf.String())
}

func TestRunReadError(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSession(t, testConfig("http://127.0.0.1:1"), &buf)

	boom := errors.New("boom")
	err := s.Run(func(string) (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunSubmitError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	s := newTestSession(t, testConfig(srv.URL), &buf)

	err := s.Run(lineReader("hi"))
	require.Error(t, err)
	assert.True(t, llm.IsResponseSchema(err))
	assert.Empty(t, buf.String())
}

type stubCompleter struct {
	got []llm.Message
}

func (s *stubCompleter) Submit(messages []llm.Message) (*llm.CompletionResponse, error) {
	s.got = messages
	return &llm.CompletionResponse{Choices: []llm.CompletionChoice{
		{Index: 0, Message: llm.Message{Role: "assistant", Content: "one"}},
		{Index: 1, Message: llm.Message{Role: "assistant", Content: "two"}},
	}}, nil
}

func TestRunRendersEveryChoice(t *testing.T) {
	var buf bytes.Buffer
	s := newTestSession(t, testConfig("http://unused"), &buf)
	stub := &stubCompleter{}
	s.client = stub

	require.NoError(t, s.Run(lineReader("q")))
	assert.Equal(t, "q", stub.got[0].Content)
	assert.Contains(t, buf.String(), "ChatGPT [0]: one")
	assert.Contains(t, buf.String(), "ChatGPT [1]: two")
}
