// Package oracle provides the streaming interpretation client. It talks to
// an OpenAI-compatible chat-completions endpoint, parses the server-sent
// event framing, and hands text deltas to the caller as they arrive.
package oracle

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mystictarot/mystic/internal/session"
	"github.com/mystictarot/mystic/internal/spread"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a conversation transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Config holds the endpoint settings for the interpretation client.
type Config struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// ErrUnavailable marks a failed request: no interpretation could be
// produced. The accompanying text returned by Interpret/Chat is a
// user-presentable placeholder, not real content, and must never be
// persisted as an assistant turn.
var ErrUnavailable = errors.New("oracle: interpretation unavailable")

// Fallback strings shown when the endpoint cannot be reached.
const (
	fallbackNetwork = "The connection to the ether is weak. Please try again later. (Network Error)"
	fallbackHTTP    = "The spirits are silent. (HTTP Error: %d)"
)

// Client issues streaming chat-completion requests.
type Client struct {
	httpClient *http.Client
	cfg        Config
	logger     *slog.Logger
}

// NewClient creates a Client. httpClient may carry a timeout for the
// connection phase; the stream itself runs until [DONE] or ctx cancel.
func NewClient(httpClient *http.Client, cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		logger:     logger,
	}
}

// Interpret builds the reading prompt for the given spread and drawn cards
// and streams the interpretation. Every non-empty delta is passed to
// onDelta in arrival order; the returned string is the concatenation of
// all deltas. On transport failure no deltas are emitted and the returned
// string is a user-presentable placeholder alongside ErrUnavailable.
func (c *Client) Interpret(ctx context.Context, sp spread.Config, cards []session.DrawnCard, onDelta func(string)) (string, error) {
	prompt := BuildPrompt(sp, cards)
	return c.stream(ctx, []Message{{Role: RoleUser, Content: prompt}}, onDelta)
}

// Chat continues a conversation: the full transcript (system and all prior
// turns) is sent verbatim, with no truncation or summarization. Streaming
// semantics are identical to Interpret.
func (c *Client) Chat(ctx context.Context, transcript []Message, onDelta func(string)) (string, error) {
	return c.stream(ctx, transcript, onDelta)
}

// chatRequest mirrors the OpenAI-compatible request shape. max_tokens is
// omitted when zero: providers reject an explicit 0 and fall back to their
// own default only when the field is absent.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// streamChunk is one data-bearing SSE record.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

func (c *Client) stream(ctx context.Context, messages []Message, onDelta func(string)) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Stream:      true,
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return fallbackNetwork, fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fallbackNetwork, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("oracle: request failed", "error", err)
		return fallbackNetwork, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn("oracle: upstream status", "status", resp.StatusCode, "body", string(detail))
		return fmt.Sprintf(fallbackHTTP, resp.StatusCode), fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	return c.consume(resp.Body, onDelta)
}

// consume reads the SSE body line by line, emitting each decoded delta.
// Malformed records are logged and skipped; one bad record never aborts
// the stream. A read error after content has arrived returns the text
// accumulated so far.
func (c *Client) consume(r io.Reader, onDelta func(string)) (string, error) {
	var full strings.Builder

	scanner := bufio.NewScanner(r)
	// Allow up to 1MB lines (providers batch large deltas into one record)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			c.logger.Warn("oracle: skipping malformed stream record", "error", err)
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		if content := chunk.Choices[0].Delta.Content; content != "" {
			full.WriteString(content)
			if onDelta != nil {
				onDelta(content)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		if full.Len() == 0 {
			c.logger.Warn("oracle: stream failed before content", "error", err)
			return fallbackNetwork, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		// Partial reading: keep what the caller already saw.
		c.logger.Warn("oracle: stream interrupted", "error", err)
	}

	return full.String(), nil
}
