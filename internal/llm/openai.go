// Package llm wraps the chat model that synthesizes answers from
// retrieved policy context.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultChatModel is the model used when none is configured.
const DefaultChatModel = "gpt-4.1-mini"

// ErrEmptyPrompt is returned when the prompt is empty
var ErrEmptyPrompt = errors.New("prompt cannot be empty")

// ChatAPI defines the raw completion call, separated from Client so
// tests can stub the network.
type ChatAPI interface {
	CreateChatCompletion(ctx context.Context, prompt string) (string, error)
}

// Client wraps the OpenAI chat API.
type Client struct {
	api ChatAPI
}

type openAIAdapter struct {
	client *openai.Client
	model  string
}

func newOpenAIAdapter(apiKey, model string) *openAIAdapter {
	if model == "" {
		model = DefaultChatModel
	}
	return &openAIAdapter{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CreateChatCompletion calls the OpenAI API with a single user message.
// The prompt instructs the model to emit a bare JSON object; the JSON
// response format nudges it the same way at the API level.
func (a *openAIAdapter) CreateChatCompletion(ctx context.Context, prompt string) (string, error) {
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// NewClient creates a new chat client.
func NewClient(apiKey, model string) *Client {
	return &Client{api: newOpenAIAdapter(apiKey, model)}
}

// NewClientWithAPI creates a client over a custom API implementation.
func NewClientWithAPI(api ChatAPI) *Client {
	return &Client{api: api}
}

// Complete generates a completion for the given prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	content, err := c.api.CreateChatCompletion(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	return content, nil
}
