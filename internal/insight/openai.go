package insight

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// Analysis output must stay deterministic enough to parse, so the chat
// requests run at a low temperature.
const openaiTemperature = 0.1

// OpenAIGenerator is a Generator backed by the OpenAI chat completion API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a new OpenAI chat client.
func NewOpenAIGenerator(apiKey, model string) (*OpenAIGenerator, error) {
	cfg := openai.DefaultConfig(apiKey)
	client := openai.NewClientWithConfig(cfg)
	return &OpenAIGenerator{client: client, model: model}, nil
}

// Generate runs one system+user exchange and returns the model's text.
func (o *OpenAIGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	temperature := float32(openaiTemperature)
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: &temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

var _ Generator = (*OpenAIGenerator)(nil)
