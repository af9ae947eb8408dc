// Package llm wraps the chat-completion provider behind a small interface
// so the extraction layer and chat pipeline can be tested with fakes.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Message is one role-tagged turn sent to the provider.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// Request configures a single completion call.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float32
	JSONMode    bool // request strict JSON-object output
}

// Completer produces a completion for a list of role-tagged messages.
// Implementations may fail or return malformed output; callers parse
// defensively.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client is the OpenAI-backed Completer.
type Client struct {
	api          *openai.Client
	defaultModel string
}

// ClientOpts holds parameters for creating a Client.
type ClientOpts struct {
	APIKey       string
	BaseURL      string // optional override for OpenAI-compatible providers
	DefaultModel string // used when a request leaves Model empty
}

// NewClient creates an OpenAI-backed Completer.
func NewClient(opts ClientOpts) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("llm: api key is required")
	}
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	model := opts.DefaultModel
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{api: openai.NewClientWithConfig(cfg), defaultModel: model}, nil
}

// Complete sends the request and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.defaultModel
	}

	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
	}
	if req.JSONMode {
		apiReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", fmt.Errorf("llm: complete: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: complete: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}
