package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sara-assist/go-sara/internal/httpc"
)

// Client is the HTTP speech-synthesis client.
type Client struct {
	baseURL string
	config  *Config
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a new synthesis client.
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
		logger:  cfg.Logger.With("component", "speech.client"),
	}, nil
}

// Synthesize converts text to audio, returning the complete buffer.
// The endpoint returns either raw audio bytes or a JSON envelope with
// base64-encoded audio; both shapes are handled here.
func (c *Client) Synthesize(ctx context.Context, text string) (*AudioResult, error) {
	start := time.Now()

	payload := map[string]any{
		"model":           c.config.Model,
		"voice":           c.config.Voice,
		"input":           text,
		"response_format": string(c.config.OutputFormat),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal payload: %v", ErrSynthesisFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrSynthesisFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, c.parseError(resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrSynthesisFailed, err)
	}

	audio, err := decodeAudioPayload(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesisFailed, err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%w: empty audio payload", ErrSynthesisFailed)
	}

	latency := time.Since(start).Milliseconds()
	c.logger.Debug("synthesized audio",
		"chars", len(text),
		"bytes", len(audio),
		"latency_ms", latency,
		"voice", c.config.Voice,
	)

	return &AudioResult{
		Audio:     audio,
		Format:    c.config.OutputFormat,
		CharCount: len([]rune(text)),
		LatencyMs: latency,
	}, nil
}

// decodeAudioPayload handles the two response shapes the deployment
// may use: raw audio bytes, or a JSON envelope {"audio": "<base64>"}.
func decodeAudioPayload(raw []byte, contentType string) ([]byte, error) {
	if !strings.Contains(contentType, "application/json") && !looksLikeJSON(raw) {
		return raw, nil
	}

	var envelope struct {
		Audio string `json:"audio"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Audio == "" {
		return nil, fmt.Errorf("envelope carries no audio")
	}

	audio, err := base64.StdEncoding.DecodeString(envelope.Audio)
	if err != nil {
		return nil, fmt.Errorf("decode base64 audio: %w", err)
	}
	return audio, nil
}

func looksLikeJSON(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// parseError reads and parses an error response.
func (c *Client) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := string(body)
	code := ""
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Code
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Code:       code,
	}
}

// Verify Client implements Synthesizer at compile time.
var _ Synthesizer = (*Client)(nil)
