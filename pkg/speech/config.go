package speech

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sara-assist/go-sara/internal/httpc"
)

// Config holds synthesis client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Connection
	BaseURL string
	APIKey  string

	// Voice configuration
	Model string
	Voice string

	// Output format requested from the endpoint.
	OutputFormat Format

	// Timeout for each HTTP request.
	Timeout time.Duration

	// HTTPClient overrides the shared client (used in tests).
	HTTPClient *http.Client

	// Observability
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithBaseURL sets the API base URL.
func WithBaseURL(url string) Option {
	return func(c *Config) { c.BaseURL = url }
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) Option {
	return func(c *Config) { c.APIKey = key }
}

// WithModel sets the synthesis model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithVoice sets the voice ID.
func WithVoice(voice string) Option {
	return func(c *Config) { c.Voice = voice }
}

// WithOutputFormat sets the requested audio container.
func WithOutputFormat(format Format) Option {
	return func(c *Config) { c.OutputFormat = format }
}

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) { c.HTTPClient = client }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// DefaultConfig returns sensible defaults for Groq PlayAI Arabic.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:      "https://api.groq.com/openai/v1",
		Model:        "playai-tts-arabic",
		Voice:        "Amira-PlayAI",
		OutputFormat: FormatMP3,
		Timeout:      httpc.DefaultTimeout,
		Logger:       slog.Default(),
	}
}

// Apply applies functional options to the config.
func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

// Validate checks that required configuration is present.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ErrNoAPIKey
	}
	return nil
}
