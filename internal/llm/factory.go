package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/truthslies/internal/model"
)

// NewProvider creates a provider from config. An empty provider name returns nil, nil.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, ollama)", config.Provider)
	}
}

// ConfigFromModel converts the runtime configuration into a provider Config
func ConfigFromModel(cfg model.LLMConfig, svc model.ServiceConfig) Config {
	return Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.Timeout,
		MaxTokens:  cfg.MaxTokens,
		HTTPProxy:  svc.HTTPProxy,
		HTTPSProxy: svc.HTTPSProxy,
		NoProxy:    svc.NoProxy,
	}
}
