package call

import (
	"log/slog"
	"time"
)

// Config holds session tuning. Use the With* options to override
// defaults.
type Config struct {
	// WelcomeText is spoken when the call connects.
	WelcomeText string

	// ListenWindow is the hard recording ceiling per turn. There is
	// no voice-activity detection; the window always runs full
	// length unless the user pushes to talk.
	ListenWindow time.Duration

	// Mode is the audio routing configuration applied once before
	// the first recording.
	AllowBackgroundRecording bool

	// Logger receives session lifecycle logs.
	Logger *slog.Logger
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		WelcomeText:  DefaultWelcome,
		ListenWindow: 10 * time.Second,
		Logger:       slog.Default(),
	}
}

// Option configures a Session.
type Option func(*Config)

// WithWelcomeText overrides the welcome line.
func WithWelcomeText(text string) Option {
	return func(c *Config) {
		if text != "" {
			c.WelcomeText = text
		}
	}
}

// WithListenWindow overrides the per-turn recording ceiling.
func WithListenWindow(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.ListenWindow = d
		}
	}
}

// WithBackgroundRecording keeps capture alive when the app is
// backgrounded.
func WithBackgroundRecording(allow bool) Option {
	return func(c *Config) {
		c.AllowBackgroundRecording = allow
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}
