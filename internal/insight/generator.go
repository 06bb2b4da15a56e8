package insight

import (
	"context"
	"fmt"

	"waisdom/internal/config"
)

// Generator is the minimal text-completion contract the gateway needs from a
// language model provider.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}

// NewGenerator is a factory that builds the configured provider client.
func NewGenerator(cfg config.LLMConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "gemini":
		return NewGeminiGenerator(cfg.Gemini.APIKey, cfg.Gemini.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
