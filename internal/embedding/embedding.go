package embedding

import (
	"fmt"

	"waisdom/internal/config"
	"waisdom/internal/interfaces"
)

// NewEmbedder is a factory that builds the configured embedding client.
func NewEmbedder(cfg config.EmbeddingConfig) (interfaces.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	case "gemini":
		return NewGoogleModel(cfg.Gemini.APIKey, cfg.Gemini.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
