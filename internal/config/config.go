// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every variable name, e.g. RESUME_BUILDER_PORT.
const EnvPrefix = "RESUME_BUILDER"

// Config is the process configuration. Values come from the environment, optionally
// layered over a JSON file; CLI flags override both.
type Config struct {
	// Server
	Port           int           `json:"port,omitempty" envconfig:"PORT" default:"8080"`
	AllowedOrigins []string      `json:"allowed_origins,omitempty" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`
	MaxSessions    int           `json:"max_sessions,omitempty" envconfig:"MAX_SESSIONS" default:"1000"`
	ThemeColor     string        `json:"theme_color,omitempty" envconfig:"THEME_COLOR" default:"#A78BFA"`
	ShutdownGrace  time.Duration `json:"-" envconfig:"SHUTDOWN_GRACE" default:"10s"`

	// Logging
	LogLevel  string `json:"log_level,omitempty" envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `json:"log_format,omitempty" envconfig:"LOG_FORMAT" default:"json"`

	// Text generation. GEMINI_API_KEY is also read without the prefix.
	GeminiAPIKey  string        `json:"-" envconfig:"GEMINI_API_KEY"`
	LLMProvider   string        `json:"llm_provider,omitempty" envconfig:"LLM_PROVIDER" default:"gemini"`
	OllamaURL     string        `json:"ollama_url,omitempty" envconfig:"OLLAMA_URL"`
	OllamaModel   string        `json:"ollama_model,omitempty" envconfig:"OLLAMA_MODEL"`
	ModelTier     string        `json:"model_tier,omitempty" envconfig:"MODEL_TIER" default:"standard"`
	AIConcurrency int           `json:"ai_concurrency,omitempty" envconfig:"AI_CONCURRENCY" default:"4"`
	AITimeout     time.Duration `json:"-" envconfig:"AI_TIMEOUT" default:"60s"`
}

var themeColorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// FromEnv reads the configuration from the environment, applying defaults.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535")
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("config error: 'max_sessions' must be positive")
	}
	if c.AIConcurrency < 1 {
		return fmt.Errorf("config error: 'ai_concurrency' must be positive")
	}
	if c.AITimeout < 0 {
		return fmt.Errorf("config error: 'ai_timeout' must be non-negative")
	}
	if !themeColorPattern.MatchString(c.ThemeColor) {
		return fmt.Errorf("config error: 'theme_color' must be a hex color, got %q", c.ThemeColor)
	}

	switch strings.ToLower(c.LogFormat) {
	case "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console")
	}
	if _, err := llm.ParseModelTier(c.ModelTier); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := llm.ParseProvider(c.LLMProvider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	for _, origin := range c.AllowedOrigins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return fmt.Errorf("config error: allowed origin %q must start with http:// or https://", origin)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// This is used to layer a config file over environment values.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if len(result.AllowedOrigins) == 0 {
		result.AllowedOrigins = defaults.AllowedOrigins
	}
	if result.MaxSessions == 0 {
		result.MaxSessions = defaults.MaxSessions
	}
	if result.ThemeColor == "" {
		result.ThemeColor = defaults.ThemeColor
	}
	if result.ShutdownGrace == 0 {
		result.ShutdownGrace = defaults.ShutdownGrace
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.LLMProvider == "" {
		result.LLMProvider = defaults.LLMProvider
	}
	if result.OllamaURL == "" {
		result.OllamaURL = defaults.OllamaURL
	}
	if result.OllamaModel == "" {
		result.OllamaModel = defaults.OllamaModel
	}
	if result.ModelTier == "" {
		result.ModelTier = defaults.ModelTier
	}
	if result.AIConcurrency == 0 {
		result.AIConcurrency = defaults.AIConcurrency
	}
	if result.AITimeout == 0 {
		result.AITimeout = defaults.AITimeout
	}

	return result
}

// Tier returns the configured model tier.
func (c *Config) Tier() llm.ModelTier {
	tier, err := llm.ParseModelTier(c.ModelTier)
	if err != nil {
		return llm.TierStandard
	}
	return tier
}

// LLMConfig builds the provider configuration for llm.NewClient.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.LLMProvider)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if provider == llm.ProviderOllama {
		return llm.DefaultOllamaConfig(c.OllamaURL, c.OllamaModel), nil
	}
	if c.GeminiAPIKey == "" {
		return nil, fmt.Errorf("config error: GEMINI_API_KEY is required for the gemini provider")
	}
	return llm.DefaultGeminiConfig(), nil
}
