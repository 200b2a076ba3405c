// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the SARA assistant service.
type Config struct {
	// Server configuration
	Port string `envconfig:"PORT" default:"8080"`

	// Groq API configuration. All three remote endpoints (chat
	// completions, Whisper transcription, speech synthesis) live
	// under the same OpenAI-compatible base URL.
	GroqAPIKey  string `envconfig:"GROQ_API_KEY" required:"true"`
	GroqBaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`

	// Chat model and the fallback used when a configured model has
	// been decommissioned upstream.
	ChatModel         string `envconfig:"GROQ_CHAT_MODEL" default:"mixtral-8x7b"`
	ChatFallbackModel string `envconfig:"GROQ_CHAT_FALLBACK_MODEL" default:"llama-3.3-70b-versatile"`

	// Whisper transcription
	WhisperModel string `envconfig:"GROQ_WHISPER_MODEL" default:"whisper-large-v3"`
	Language     string `envconfig:"SARA_LANGUAGE" default:"ar"`

	// Speech synthesis
	TTSModel string `envconfig:"GROQ_TTS_MODEL" default:"playai-tts-arabic"`
	TTSVoice string `envconfig:"GROQ_TTS_VOICE" default:"Amira-PlayAI"`

	// Voice call behavior
	ListenWindowSeconds int `envconfig:"SARA_LISTEN_WINDOW_SECONDS" default:"10"`

	// Audio backend: "auto", "oto", "malgo", "mock"
	AudioBackend string `envconfig:"SARA_AUDIO_BACKEND" default:"auto"`

	// Observability
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// ListenWindow returns the recording auto-cutoff ceiling as a duration.
func (c *Config) ListenWindow() time.Duration {
	return time.Duration(c.ListenWindowSeconds) * time.Second
}

// Load reads configuration from environment variables.
// It first attempts to load from a .env file if one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv loads configuration directly from environment variables
// without attempting to load a .env file (useful for containers).
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.GroqAPIKey == "" {
		return nil, fmt.Errorf("GROQ_API_KEY is required")
	}
	if cfg.ListenWindowSeconds <= 0 {
		return nil, fmt.Errorf("SARA_LISTEN_WINDOW_SECONDS must be positive")
	}

	return &cfg, nil
}
