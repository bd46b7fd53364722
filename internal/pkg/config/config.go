// Package config provides configuration management for gai.
package config

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// Provider names.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// Config keys. They are stored upper-cased in the dotfile (PROVIDER=...).
const (
	KeyProvider   = "provider"
	KeyModel      = "model"
	KeyAPIKey     = "api_key"
	KeyChatURL    = "chat_url"
	KeyTimeout    = "timeout"
	KeyOneline    = "oneline"
	KeyPromptFile = "prompt_file"
	KeyEditor     = "editor"
)

// Keys lists every supported key in display order.
var Keys = []string{
	KeyProvider,
	KeyModel,
	KeyAPIKey,
	KeyChatURL,
	KeyTimeout,
	KeyOneline,
	KeyPromptFile,
	KeyEditor,
}

const (
	DefaultOllamaModel    = "llama3.2"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultOllamaEndpoint = "http://localhost:11434/api"
	DefaultOpenAIEndpoint = "https://api.openai.com/v1"
	DefaultTimeoutSeconds = 60
	DefaultChatModel      = "gemma:2b"
)

// Config is the resolved configuration handed to providers and commands.
type Config struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	ChatURL    string `mapstructure:"chat_url"`
	Timeout    int    `mapstructure:"timeout"`
	Oneline    bool   `mapstructure:"oneline"`
	PromptFile string `mapstructure:"prompt_file"`
	Editor     string `mapstructure:"editor"`
}

// Manager defines the interface for configuration management.
type Manager interface {
	Load() (*Config, error)
	Set(key string, value string) error
	Get(key string) (string, error)
	Init() error
	List() (map[string]string, error)
	GetConfigPath() string
	SetOverride(key string, value interface{})
	ConfigExists() bool
}

// IsKnownKey reports whether key is a supported config key.
func IsKnownKey(key string) bool {
	key = NormalizeKey(key)
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// NormalizeKey maps PROVIDER, provider and GAI_PROVIDER to "provider".
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.TrimPrefix(key, "gai_")
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIModel
	}
	return DefaultOllamaModel
}

// DefaultEndpoint returns the endpoint used when CHAT_URL is unset.
func DefaultEndpoint(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIEndpoint
	}
	return DefaultOllamaEndpoint
}

// Normalize trims values and fills provider dependent defaults.
func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderOllama
	}
	c.Model = strings.TrimSpace(c.Model)
	if c.Model == "" {
		c.Model = DefaultModel(c.Provider)
	}
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.ChatURL = strings.TrimRight(strings.TrimSpace(c.ChatURL), "/")
	if c.ChatURL == "" {
		c.ChatURL = DefaultEndpoint(c.Provider)
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeoutSeconds
	}
}

// Validate checks the provider name and provider specific requirements.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderOllama:
		return nil
	case ProviderOpenAI:
		if c.APIKey == "" {
			return apperrors.NewMissingAPIKeyError(ProviderOpenAI)
		}
		return nil
	default:
		return apperrors.NewInvalidProviderError(c.Provider)
	}
}

// TimeoutDuration returns the HTTP timeout for provider calls.
func (c *Config) TimeoutDuration() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeoutSeconds * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// Value returns the string form of a key.
func (c *Config) Value(key string) (string, error) {
	switch NormalizeKey(key) {
	case KeyProvider:
		return c.Provider, nil
	case KeyModel:
		return c.Model, nil
	case KeyAPIKey:
		return c.APIKey, nil
	case KeyChatURL:
		return c.ChatURL, nil
	case KeyTimeout:
		return fmt.Sprintf("%d", c.Timeout), nil
	case KeyOneline:
		return fmt.Sprintf("%t", c.Oneline), nil
	case KeyPromptFile:
		return c.PromptFile, nil
	case KeyEditor:
		return c.Editor, nil
	default:
		return "", fmt.Errorf("key not found: %s", key)
	}
}
