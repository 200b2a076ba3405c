package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sara-assist/go-sara/internal/httpc"
)

// Client is the HTTP chat-completion client.
// Works with any OpenAI-compatible API (Groq, OpenAI, Ollama, vLLM).
type Client struct {
	baseURL string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a new chat client.
func NewClient(opts ...Option) (*Client, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpc.NewClient(cfg.Timeout)
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		config:  cfg,
		http:    httpClient,
		logger:  cfg.Logger.With("component", "assistant.client"),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Text    string      `json:"text"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete generates a single assistant reply for the given user text.
// When the API reports the requested model as unavailable the request
// is retried exactly once with the configured fallback model; any
// further failure surfaces as ErrChatFailed.
func (c *Client) Complete(ctx context.Context, userText string) (string, error) {
	reply, err := c.complete(ctx, userText, c.config.Model)
	if err == nil {
		return reply, nil
	}

	fallback := c.fallbackModel()
	var apiErr *APIError
	if fallback != c.config.Model && errors.As(err, &apiErr) && IsModelUnavailable(apiErr.Message) {
		c.logger.Warn("chat model unavailable, retrying with fallback",
			"model", c.config.Model,
			"fallback", fallback,
		)
		reply, retryErr := c.complete(ctx, userText, fallback)
		if retryErr == nil {
			return reply, nil
		}
		return "", fmt.Errorf("%w: %v", ErrChatFailed, retryErr)
	}

	return "", fmt.Errorf("%w: %v", ErrChatFailed, err)
}

func (c *Client) complete(ctx context.Context, userText, model string) (string, error) {
	start := time.Now()

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: RoleSystem, Content: c.config.Persona},
			{Role: RoleUser, Content: userText},
		},
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// The API can return an error payload with a 200 status, so the
	// body is decoded before the status code is judged.
	var result chatResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&result); decodeErr != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
		}
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}

	if result.Error != nil {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    result.Error.Message,
			Code:       result.Error.Code,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
	}

	content := ""
	if len(result.Choices) > 0 {
		content = result.Choices[0].Message.Content
		if content == "" {
			content = result.Choices[0].Text
		}
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("no usable content in response")
	}

	c.logger.Debug("chat completion",
		"model", model,
		"chars", len(content),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return content, nil
}

func (c *Client) fallbackModel() string {
	if c.config.FallbackModel != "" {
		return c.config.FallbackModel
	}
	return c.config.Model
}

// Verify Client implements Completer at compile time.
var _ Completer = (*Client)(nil)
