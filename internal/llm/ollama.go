package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// OllamaClient implements Client against the Ollama /api/generate endpoint
type OllamaClient struct {
	http   *resty.Client
	config *Config
}

// NewOllamaClient creates a client for config.BaseURL.
func NewOllamaClient(config *Config) *OllamaClient {
	c := resty.New().
		SetBaseURL(config.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(5 * time.Minute)

	return &OllamaClient{http: c, config: config}
}

type ollamaOptions struct {
	Temperature float32 `json:"temperature"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Format  string        `json:"format,omitempty"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// GenerateContent generates text content using the specified model tier
func (c *OllamaClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "")
}

// GenerateJSON generates JSON content using the specified model tier
func (c *OllamaClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *OllamaClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the underlying HTTP client holds no resources that need releasing.
func (c *OllamaClient) Close() error {
	return nil
}

func (c *OllamaClient) generate(ctx context.Context, prompt string, tier ModelTier, format string) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	reqBody := ollamaGenerateRequest{
		Model:   modelName,
		Prompt:  prompt,
		Format:  format,
		Options: ollamaOptions{Temperature: c.config.Temperature},
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("ollama status %d: %s", resp.StatusCode(), resp.String())
	}

	var out ollamaGenerateResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Response == "" {
		return "", fmt.Errorf("no content in response")
	}
	return out.Response, nil
}
