// Package llm provides the text-generation client abstraction and its provider configuration.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short, cheap calls such as proofreading a single field
	TierLite ModelTier = "lite"
	// TierStandard is for drafting summaries and bullet points
	TierStandard ModelTier = "standard"
	// TierAdvanced is for whole-document work
	TierAdvanced ModelTier = "advanced"
)

// ParseModelTier converts a configured tier name. An empty name yields TierStandard.
func ParseModelTier(s string) (ModelTier, error) {
	switch tier := ModelTier(strings.ToLower(strings.TrimSpace(s))); tier {
	case "":
		return TierStandard, nil
	case TierLite, TierStandard, TierAdvanced:
		return tier, nil
	default:
		return "", fmt.Errorf("unknown model tier %q", s)
	}
}

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOllama is a local Ollama server reached over HTTP
	ProviderOllama Provider = "ollama"
)

// ParseProvider converts a configured provider name. An empty name yields ProviderGemini.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProviderGemini, nil
	case ProviderGemini, ProviderOllama:
		return p, nil
	default:
		return "", fmt.Errorf("unknown llm provider %q", s)
	}
}

// DefaultTemperature leaves room for varied phrasing in drafted resume text.
const DefaultTemperature float32 = 0.7

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	// BaseURL is only used by HTTP providers such as Ollama.
	BaseURL string
}

// DefaultConfig returns the default configuration (currently Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: DefaultTemperature,
	}
}

// DefaultOllamaConfig returns a configuration that sends every tier to one local model.
func DefaultOllamaConfig(baseURL, model string) *Config {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &Config{
		Provider: ProviderOllama,
		Models: map[ModelTier]string{
			TierStandard: model,
		},
		Temperature: DefaultTemperature,
		BaseURL:     baseURL,
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
