package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client is an abstraction over chat-completion providers. The workflow
// treats it as an opaque function from prompt to text.
type Client interface {
	// GenerateContent generates free-form text for the prompt.
	GenerateContent(ctx context.Context, prompt string) (string, error)
	// GenerateJSON generates a JSON response for the prompt.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a provider client for the given configuration.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newGenaiClient(ctx, cfg)
}

// genaiClient implements Client on top of the Google generative AI SDK.
type genaiClient struct {
	client *genai.Client
	cfg    Config
}

func newGenaiClient(ctx context.Context, cfg Config) (*genaiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, &ConfigError{Message: "failed to create chat client", Cause: err}
	}
	return &genaiClient{client: client, cfg: cfg}, nil
}

func (c *genaiClient) model() *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.cfg.Model)
	model.SetTemperature(float32(c.cfg.Temperature))
	model.SetTopP(float32(c.cfg.TopP))
	if c.cfg.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(c.cfg.MaxOutputTokens))
	}
	return model
}

// GenerateContent generates free-form text for the prompt.
func (c *genaiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model().GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	return textFromResponse(resp)
}

// GenerateJSON generates a JSON response for the prompt. The response is
// requested as application/json, but callers should still strip markdown
// fences with CleanJSONBlock before parsing.
func (c *genaiClient) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	model := c.model()
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text, err := textFromResponse(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client.
func (c *genaiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// textFromResponse concatenates the text parts of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
