package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Protocol-Lattice/go-analyst/src/models"
	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	AI     AIConfig
	Upload UploadConfig
}

type AppConfig struct {
	Port        string
	Environment string
	LogFilePath string
	Persona     string
	// DotEnvLoaded is false when no .env file was read; settings then come
	// from the process environment alone.
	DotEnvLoaded bool
}

type AIConfig struct {
	Provider        string // "gemini", "openai", "anthropic", "ollama", "dummy"
	Model           string
	GoogleAPIKey    string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
}

type UploadConfig struct {
	MaxBytes int64
	TempDir  string
}

// ConfigurationError is fatal: the process must not start without it fixed.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Key, e.Reason)
}

func Load() *Config {
	dotEnv := godotenv.Load() == nil

	return &Config{
		App: AppConfig{
			Port:         getEnv("APP_PORT", "3000"),
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", ""),
			Persona:      getEnv("DEFAULT_PERSONA", "analyst"),
			DotEnvLoaded: dotEnv,
		},
		AI: AIConfig{
			Provider:        getEnv("LLM_PROVIDER", models.ProviderGemini),
			Model:           getEnv("LLM_MODEL", ""),
			GoogleAPIKey:    firstSecret("GOOGLE_API_KEY", "GEMINI_API_KEY"),
			OpenAIAPIKey:    firstSecret("OPENAI_API_KEY", "OPENAI_KEY"),
			AnthropicAPIKey: firstSecret("ANTHROPIC_API_KEY"),
			OllamaHost:      getEnv("OLLAMA_HOST", models.DefaultOllamaHost),
		},
		Upload: UploadConfig{
			MaxBytes: getEnvAsInt64("UPLOAD_MAX_BYTES", 10<<20),
			TempDir:  getEnv("UPLOAD_TEMP_DIR", ""),
		},
	}
}

// IsProduction reports whether GO_ENV selects production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

// APIKey returns the credential for the configured provider.
func (c *Config) APIKey() string {
	switch strings.ToLower(strings.TrimSpace(c.AI.Provider)) {
	case "gemini", "google":
		return c.AI.GoogleAPIKey
	case "openai":
		return c.AI.OpenAIAPIKey
	case "anthropic", "claude":
		return c.AI.AnthropicAPIKey
	default:
		return ""
	}
}

// Validate checks everything that must hold before any interaction starts.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AI.Provider) == "" {
		return &ConfigurationError{Key: "LLM_PROVIDER", Reason: "empty"}
	}
	if models.NeedsAPIKey(c.AI.Provider) && strings.TrimSpace(c.APIKey()) == "" {
		return &ConfigurationError{Key: credentialKey(c.AI.Provider), Reason: "missing API credential"}
	}
	if _, err := strconv.Atoi(c.App.Port); err != nil {
		return &ConfigurationError{Key: "APP_PORT", Reason: fmt.Sprintf("not a number: %q", c.App.Port)}
	}
	if c.Upload.MaxBytes <= 0 {
		return &ConfigurationError{Key: "UPLOAD_MAX_BYTES", Reason: "must be positive"}
	}
	return nil
}

// ProviderConfig maps the AI section onto the model factory's input.
func (c *Config) ProviderConfig() models.ProviderConfig {
	return models.ProviderConfig{
		Provider: c.AI.Provider,
		Model:    c.AI.Model,
		APIKey:   c.APIKey(),
		Host:     c.AI.OllamaHost,
	}
}

func credentialKey(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return "GOOGLE_API_KEY"
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt64(key string, fallback int64) int64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseInt(strValue, 10, 64); err == nil {
		return value
	}
	return fallback
}

// firstSecret returns the first non-empty credential among keys. Each key may
// also be supplied as a mounted secret file named by KEY_FILE.
func firstSecret(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
		if path := strings.TrimSpace(os.Getenv(key + "_FILE")); path != "" {
			if data, err := os.ReadFile(path); err == nil {
				if v := strings.TrimSpace(string(data)); v != "" {
					return v
				}
			}
		}
	}
	return ""
}
