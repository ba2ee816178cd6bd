package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Client wraps the Ollama HTTP API: one single-shot chat completion plus the
// three streaming model-management operations (pull, create, push).
type Client struct {
	baseURL     string
	model       string
	chatTimeout time.Duration

	// Management streams run for as long as a pull or push takes, so they
	// get a client with no deadline; only chat is bounded.
	streamClient *http.Client
}

// ChatMessage is one role-tagged turn of history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GatewayError reports a failed management exchange: non-success status,
// missing body or transport error. There is no partial success; callers
// treat any GatewayError as total failure of the operation.
type GatewayError struct {
	Op     string
	Status int
	Err    error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ollama %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("ollama %s: HTTP %d", e.Op, e.Status)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// New creates a client for the Ollama server at baseURL. model is the
// default chat model; chatTimeout bounds the chat call only.
func New(baseURL, model string, chatTimeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		model:        model,
		chatTimeout:  chatTimeout,
		streamClient: &http.Client{},
	}
}

// DefaultModel returns the configured chat model name.
func (c *Client) DefaultModel() string { return c.model }

type chatChunk struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerateReply runs a streaming chat completion over the history and
// returns the accumulated assistant text. It never fails: timeouts, refused
// connections, bad statuses and empty replies all produce the deterministic
// local fallback instead, so the caller can always record an assistant
// message.
func (c *Client) GenerateReply(ctx context.Context, model string, history []ChatMessage) string {
	if model == "" {
		model = c.model
	}
	text, err := c.chat(ctx, model, history)
	if err != nil {
		logSkip("chat", err)
		return FallbackReply(history)
	}
	if strings.TrimSpace(text) == "" {
		return FallbackReply(history)
	}
	return strings.TrimSpace(text)
}

func (c *Client) chat(ctx context.Context, model string, history []ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.chatTimeout)
	defer cancel()

	body, err := json.Marshal(map[string]any{
		"model":    model,
		"messages": history,
		"stream":   true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.streamClient.Do(req)
	if err != nil {
		recordGatewayCall(time.Since(start), err)
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		err := &GatewayError{Op: "chat", Status: resp.StatusCode}
		recordGatewayCall(time.Since(start), err)
		return "", err
	}

	var full strings.Builder
	err = decodeLines(resp.Body, func(line []byte) {
		var ch chatChunk
		if err := json.Unmarshal(line, &ch); err != nil {
			logSkip("chat", err)
			return
		}
		if ch.Message.Content != "" {
			full.WriteString(ch.Message.Content)
		} else if ch.Response != "" {
			full.WriteString(ch.Response)
		}
	})
	recordGatewayCall(time.Since(start), err)
	if err != nil {
		return "", err
	}
	return full.String(), nil
}

// FallbackReply builds the local assistant reply used whenever the model
// backend is unreachable. It quotes the last user message when one exists so
// the reply stays deterministic and obviously synthetic.
func FallbackReply(history []ChatMessage) string {
	const base = "Ollama is unreachable right now, so this message was created locally."
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "user" {
			return fmt.Sprintf("%s You asked: %q", base, history[i].Content)
		}
	}
	return base + " Ask me again once the model is online."
}

// PullModel downloads a base model, invoking onChunk once per progress
// record in arrival order. It returns after the stream closes.
func (c *Client) PullModel(ctx context.Context, model string, onChunk func(ProgressChunk)) error {
	return c.streamJob(ctx, "pull", "/api/pull", map[string]any{"model": model}, onChunk)
}

// CreateModel builds a named model from a modelfile description.
func (c *Client) CreateModel(ctx context.Context, model, modelfile string, onChunk func(ProgressChunk)) error {
	return c.streamJob(ctx, "create", "/api/create", map[string]any{"model": model, "modelfile": modelfile}, onChunk)
}

// PushModel uploads a named model to the registry.
func (c *Client) PushModel(ctx context.Context, model string, onChunk func(ProgressChunk)) error {
	return c.streamJob(ctx, "push", "/api/push", map[string]any{"model": model}, onChunk)
}

func (c *Client) streamJob(ctx context.Context, op, path string, payload any, onChunk func(ProgressChunk)) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.streamClient.Do(req)
	if err != nil {
		recordGatewayCall(time.Since(start), err)
		return &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		gerr := &GatewayError{Op: op, Status: resp.StatusCode}
		recordGatewayCall(time.Since(start), gerr)
		return gerr
	}

	err = decodeLines(resp.Body, func(line []byte) {
		chunk, ok := parseProgress(line)
		if !ok {
			logSkip(op, fmt.Errorf("malformed progress record"))
			return
		}
		if onChunk != nil {
			onChunk(chunk)
		}
	})
	recordGatewayCall(time.Since(start), err)
	if err != nil {
		return &GatewayError{Op: op, Err: err}
	}
	return nil
}
