package assistant

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sara-assist/go-sara/internal/httpc"
)

// Config holds chat client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Connection
	BaseURL string
	APIKey  string

	// Model is the chat model requested first.
	Model string

	// FallbackModel is retried once when the API reports Model as
	// unavailable. When empty, Model doubles as the fallback and no
	// retry happens.
	FallbackModel string

	// Request defaults
	MaxTokens   int
	Temperature float64

	// Persona overrides the default system instruction.
	Persona string

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

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(c *Config) { c.Model = model }
}

// WithFallbackModel sets the model retried on model-unavailable errors.
func WithFallbackModel(model string) Option {
	return func(c *Config) { c.FallbackModel = model }
}

// WithMaxTokens sets the response token ceiling.
func WithMaxTokens(n int) Option {
	return func(c *Config) { c.MaxTokens = n }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) { c.Temperature = t }
}

// WithPersona overrides the system instruction.
func WithPersona(persona string) Option {
	return func(c *Config) { c.Persona = persona }
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

// DefaultConfig returns sensible defaults for Groq.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "https://api.groq.com/openai/v1",
		Model:       "mixtral-8x7b",
		MaxTokens:   500,
		Temperature: 0.7,
		Persona:     Persona,
		Timeout:     httpc.DefaultTimeout,
		Logger:      slog.Default(),
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
