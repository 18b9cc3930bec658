package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/tnglemongrass/gptcli/internal/config"
)

// maxResponseBytes caps how much of a response body is read.
var maxResponseBytes int64 = 16 << 20

// Client sends chat completion requests to an OpenAI-compatible endpoint.
// It holds no mutable state and may be shared between goroutines.
type Client struct {
	cfg        config.OpenAI
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a Client for the given configuration.
func NewClient(cfg config.OpenAI, opts ...Option) *Client {
	c := &Client{cfg: cfg}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newHTTPClient(cfg.Timeout)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Submit sends messages, in order, as one completion request and parses the
// reply. It makes exactly one attempt. Failures are *Error values of kind
// KindTransport or KindResponseSchema.
func (c *Client) Submit(messages []Message) (*CompletionResponse, error) {
	if messages == nil {
		messages = []Message{}
	}
	body, err := json.Marshal(CompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	callID := uuid.NewString()
	log := c.logger.With("call_id", callID)
	log.Debug("submitting completion",
		"model", c.cfg.Model,
		"endpoint", c.cfg.Endpoint,
		"messages", len(messages),
	)

	httpReq, err := http.NewRequest(http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: fmt.Errorf("do request: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if int64(len(raw)) > maxResponseBytes {
		return nil, &Error{Kind: KindTransport, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: body exceeds %d bytes", maxResponseBytes)}
	}

	result, err := decodeResponse(raw)
	if err != nil {
		log.Error("malformed completion response",
			"status", resp.StatusCode,
			"body", string(raw),
			"error", err,
		)
		return nil, &Error{
			Kind:       KindResponseSchema,
			StatusCode: resp.StatusCode,
			Body:       string(raw),
			Provider:   providerMessage(raw),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}

	log.Debug("completion received",
		"status", resp.StatusCode,
		"choices", len(result.Choices),
		"total_tokens", result.Usage.TotalTokens,
	)
	return result, nil
}
