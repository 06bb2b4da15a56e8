package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application metadata.
type AppInfo struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
}

// LoggerConfig configures the log level ("debug", "info", "warn", "error").
type LoggerConfig struct {
	Level string `yaml:"level"`
}

// HTTPConfig configures the REST surface.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// FileStoreConfig configures the one-file-per-record backend.
type FileStoreConfig struct {
	Dir string `yaml:"dir"`
}

// MongoConfig configures the MongoDB record-store backend.
type MongoConfig struct {
	Address    string `yaml:"address"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

// StorageConfig selects and configures the record-store backend.
type StorageConfig struct {
	Backend string          `yaml:"backend"` // "file" or "mongo"
	File    FileStoreConfig `yaml:"file"`
	Mongo   MongoConfig     `yaml:"mongo"`
}

// MilvusConfig configures the Milvus vector-index backend.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
	Dim        int    `yaml:"dim"`
}

// VectorConfig selects and configures the vector-index backend.
type VectorConfig struct {
	Backend string       `yaml:"backend"` // "memory" or "milvus"
	Milvus  MilvusConfig `yaml:"milvus"`
}

// ProviderConfig holds the credentials and model name for one LLM or
// embedding provider.
type ProviderConfig struct {
	APIKey string `yaml:"apiKey"`
	Model  string `yaml:"model"`
}

// LLMConfig selects the insight-gateway provider.
type LLMConfig struct {
	Provider string         `yaml:"provider"` // "openai" or "gemini"
	OpenAI   ProviderConfig `yaml:"openai"`
	Gemini   ProviderConfig `yaml:"gemini"`
}

// EmbeddingConfig selects the embedding provider.
type EmbeddingConfig struct {
	Provider string         `yaml:"provider"` // "openai" or "gemini"
	OpenAI   ProviderConfig `yaml:"openai"`
	Gemini   ProviderConfig `yaml:"gemini"`
}

// RedisConfig configures the optional Redis-backed interests registry.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AssistantConfig holds the tunables of the content pipeline and scheduler.
type AssistantConfig struct {
	HighPriorityThreshold float64  `yaml:"highPriorityThreshold"`
	ReminderOffsetDays    int      `yaml:"reminderOffsetDays"`
	DigestLimit           int      `yaml:"digestLimit"`
	RecommendPool         int      `yaml:"recommendPool"`
	EnrichTimeoutSeconds  int      `yaml:"enrichTimeoutSeconds"`
	ReminderCheckMinutes  int      `yaml:"reminderCheckMinutes"`
	DefaultInterests      []string `yaml:"defaultInterests"`
}

// ReminderOffset returns the reminder offset as a duration.
func (c AssistantConfig) ReminderOffset() time.Duration {
	return time.Duration(c.ReminderOffsetDays) * 24 * time.Hour
}

// EnrichTimeout returns the enrichment timeout as a duration.
func (c AssistantConfig) EnrichTimeout() time.Duration {
	return time.Duration(c.EnrichTimeoutSeconds) * time.Second
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Logger    LoggerConfig    `yaml:"logger"`
	HTTP      HTTPConfig      `yaml:"http"`
	Storage   StorageConfig   `yaml:"storage"`
	Vector    VectorConfig    `yaml:"vector"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Redis     RedisConfig     `yaml:"redis"`
	Assistant AssistantConfig `yaml:"assistant"`
}

// LoadConfig reads and parses a YAML configuration file, fills in defaults,
// and resolves API keys from the environment when the file leaves them empty.
func LoadConfig(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.applyDefaults()
	cfg.resolveEnv()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "file"
	}
	if c.Storage.File.Dir == "" {
		c.Storage.File.Dir = "data/content"
	}
	if c.Storage.Mongo.Collection == "" {
		c.Storage.Mongo.Collection = "content_records"
	}
	if c.Vector.Backend == "" {
		c.Vector.Backend = "memory"
	}
	if c.Vector.Milvus.Collection == "" {
		c.Vector.Milvus.Collection = "waisdom_content"
	}
	if c.Vector.Milvus.Dim == 0 {
		c.Vector.Milvus.Dim = 1536
	}
	if c.Assistant.HighPriorityThreshold == 0 {
		c.Assistant.HighPriorityThreshold = 7.0
	}
	if c.Assistant.ReminderOffsetDays == 0 {
		c.Assistant.ReminderOffsetDays = 3
	}
	if c.Assistant.DigestLimit == 0 {
		c.Assistant.DigestLimit = 5
	}
	if c.Assistant.RecommendPool == 0 {
		c.Assistant.RecommendPool = 20
	}
	if c.Assistant.EnrichTimeoutSeconds == 0 {
		c.Assistant.EnrichTimeoutSeconds = 60
	}
	if c.Assistant.ReminderCheckMinutes == 0 {
		c.Assistant.ReminderCheckMinutes = 60
	}
	if len(c.Assistant.DefaultInterests) == 0 {
		c.Assistant.DefaultInterests = []string{"AI", "technology", "research"}
	}
}

// resolveEnv lets the config file omit secrets and pick them up from the
// environment instead.
func (c *AppConfig) resolveEnv() {
	if c.LLM.OpenAI.APIKey == "" {
		c.LLM.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.LLM.Gemini.APIKey == "" {
		c.LLM.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.Embedding.OpenAI.APIKey == "" {
		c.Embedding.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Embedding.Gemini.APIKey == "" {
		c.Embedding.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}
