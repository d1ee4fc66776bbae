// Package llmtest provides an in-memory llm.Client for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/jonathan/resume-builder/internal/llm"
)

// Call records one request made to the fake.
type Call struct {
	Prompt string
	Tier   llm.ModelTier
	JSON   bool
}

// Client is a scripted llm.Client. Respond decides every reply; when it is nil the
// fixed Response and Err are returned.
type Client struct {
	Respond  func(ctx context.Context, prompt string) (string, error)
	Response string
	Err      error

	mu     sync.Mutex
	calls  []Call
	closed bool
}

var _ llm.Client = (*Client)(nil)

// GenerateContent implements llm.Client.
func (c *Client) GenerateContent(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return c.reply(ctx, Call{Prompt: prompt, Tier: tier})
}

// GenerateJSON implements llm.Client.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	text, err := c.reply(ctx, Call{Prompt: prompt, Tier: tier, JSON: true})
	if err != nil {
		return "", err
	}
	return llm.CleanJSONBlock(text), nil
}

// GetModel implements llm.Client.
func (c *Client) GetModel(tier llm.ModelTier) string {
	return "fake-" + string(tier)
}

// Close implements llm.Client.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// Calls returns a copy of the recorded calls.
func (c *Client) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Closed reports whether Close was called.
func (c *Client) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Client) reply(ctx context.Context, call Call) (string, error) {
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if c.Respond != nil {
		return c.Respond(ctx, call.Prompt)
	}
	return c.Response, c.Err
}
