// Package llm provides the chat-completion gateway used by all workflow
// steps: a provider-agnostic Client, its configuration, and a Gateway handle
// that owns the active configuration for a process.
package llm

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables consumed when no explicit configuration is given.
const (
	EnvAPIKey      = "LLM_API_KEY"
	EnvModel       = "LLM_MODEL"
	EnvTemperature = "LLM_TEMPERATURE"
)

// Defaults applied when the environment does not override them.
const (
	DefaultModel       = "gpt-4-turbo"
	DefaultTemperature = 0.7
	DefaultTopP        = 1.0
)

// Config holds the generation parameters for the chat client.
type Config struct {
	Model           string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
	APIKey          string
}

// ConfigFromEnv builds a Config from environment variables, falling back to
// package defaults for anything unset.
func ConfigFromEnv() Config {
	cfg := Config{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		APIKey:      os.Getenv(EnvAPIKey),
	}
	if model := os.Getenv(EnvModel); model != "" {
		cfg.Model = model
	}
	if raw := os.Getenv(EnvTemperature); raw != "" {
		if temp, err := strconv.ParseFloat(raw, 64); err == nil {
			cfg.Temperature = temp
		}
	}
	return cfg
}

// Validate checks credential presence and parameter bounds.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return &ConfigError{Message: fmt.Sprintf("API key is required (set %s)", EnvAPIKey)}
	}
	if c.Model == "" {
		return &ConfigError{Message: "model name is required"}
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return &ConfigError{Message: fmt.Sprintf("temperature %.2f out of range [0,2]", c.Temperature)}
	}
	if c.TopP < 0 || c.TopP > 1 {
		return &ConfigError{Message: fmt.Sprintf("top_p %.2f out of range [0,1]", c.TopP)}
	}
	return nil
}

// ConfigError represents a gateway configuration failure: a missing
// credential or an out-of-range generation parameter.
type ConfigError struct {
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("llm configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("llm configuration error: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}
