// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// Host is the base URL for the OpenAI-compatible API.
	// Example: "https://api.openai.com/v1", "http://localhost:11434/v1"
	Host string

	// APIKey authenticates against the API. Local OpenAI-compatible servers
	// typically accept any non-empty value.
	APIKey string

	// ChatModel is the model identifier for conversational streaming.
	// Example: "gpt-4o"
	ChatModel string

	// GenerationModel is the model identifier for course generation.
	// Typically a larger model than ChatModel. Example: "gpt-5"
	GenerationModel string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "text-embedding-3-small"
	EmbeddingModel string

	// TranscriptionModel is the model identifier for speech-to-text.
	// Example: "whisper-1"
	TranscriptionModel string

	// Language is the expected language of uploaded media, passed to the
	// transcription API as a hint. Example: "en"
	Language string

	// MaxOutputTokens caps chat responses. Generation requests use a higher
	// internal limit since a full course document is large.
	MaxOutputTokens int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the API base URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithChatModel sets the conversational model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithGenerationModel sets the course generation model identifier.
func WithGenerationModel(model string) ConfigOption {
	return func(c *Config) {
		c.GenerationModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTranscriptionModel sets the speech-to-text model identifier.
func WithTranscriptionModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionModel = model
	}
}

// WithLanguage sets the transcription language hint.
func WithLanguage(lang string) ConfigOption {
	return func(c *Config) {
		c.Language = lang
	}
}

// WithMaxOutputTokens sets the chat response token cap.
func WithMaxOutputTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxOutputTokens = n
	}
}

// DefaultConfig returns a Config with sensible defaults for the OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		Host:               "https://api.openai.com/v1",
		ChatModel:          "gpt-4o",
		GenerationModel:    "gpt-5",
		EmbeddingModel:     "text-embedding-3-small",
		TranscriptionModel: "whisper-1",
		Language:           "en",
		MaxOutputTokens:    2048,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
// This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("embeddinggemma"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to the host if missing, which is
// required by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.ChatModel == "" {
		return errors.New("ai config: ChatModel is required")
	}
	if c.GenerationModel == "" {
		return errors.New("ai config: GenerationModel is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.TranscriptionModel == "" {
		return errors.New("ai config: TranscriptionModel is required")
	}
	if c.MaxOutputTokens <= 0 {
		return errors.New("ai config: MaxOutputTokens must be positive")
	}
	return nil
}
