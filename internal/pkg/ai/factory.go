package ai

import (
	"github.com/gaicli/gai/internal/pkg/config"
	apperrors "github.com/gaicli/gai/internal/pkg/errors"
)

// NewProvider validates cfg and builds the provider it names.
func NewProvider(cfg config.Config) (Provider, error) {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts, err := LoadPrompts(cfg.PromptFile)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInvalidConfig, "failed to load prompt overrides").
			WithSuggestion("Fix or unset PROMPT_FILE")
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.ChatURL, cfg.Model, cfg.TimeoutDuration(), prompts)
	case config.ProviderOllama:
		return NewOllamaProvider(cfg.ChatURL, cfg.Model, cfg.TimeoutDuration(), prompts)
	default:
		return nil, apperrors.NewInvalidProviderError(cfg.Provider)
	}
}

// NewChatStreamer builds the Ollama client used by the chat command.
// When the configured provider is not Ollama, the local default endpoint and chat model are used.
func NewChatStreamer(cfg config.Config) (*OllamaProvider, error) {
	cfg.Normalize()
	endpoint, model := cfg.ChatURL, cfg.Model
	if cfg.Provider != config.ProviderOllama {
		endpoint, model = config.DefaultOllamaEndpoint, config.DefaultChatModel
	}
	return NewOllamaProvider(endpoint, model, cfg.TimeoutDuration(), DefaultPrompts())
}
