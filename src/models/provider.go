package models

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderOllama    = "ollama"
	ProviderDummy     = "dummy"
)

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	Provider string
	Model    string
	APIKey   string
	Host     string // Ollama only
	Logger   *zap.Logger
}

// NeedsAPIKey reports whether the named provider requires a credential.
func NeedsAPIKey(provider string) bool {
	switch canonicalProvider(provider) {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return true
	default:
		return false
	}
}

// NewProvider returns a concrete Provider.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	switch canonicalProvider(cfg.Provider) {
	case ProviderGemini:
		return NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, logger)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.Model, logger), nil
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.Model, logger), nil
	case ProviderOllama:
		return NewOllamaProvider(cfg.Host, cfg.Model, logger)
	case ProviderDummy:
		return NewDummyProvider(""), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
	}
}

func canonicalProvider(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "gemini", "google":
		return ProviderGemini
	case "openai":
		return ProviderOpenAI
	case "anthropic", "claude":
		return ProviderAnthropic
	case "ollama":
		return ProviderOllama
	case "dummy":
		return ProviderDummy
	default:
		return ""
	}
}
