package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           string            `mapstructure:"port"`
	UploadDir      string            `mapstructure:"upload_dir"`
	AIEndpoint     string            `mapstructure:"ai_endpoint"`
	OpenAIAPIKey   string            `mapstructure:"OPENAI_API_KEY"`
	GeminiAPIKey   string            `mapstructure:"GEMINI_API_KEY"`
	Provider       string            `mapstructure:"provider"`
	Model          string            `mapstructure:"model"`
	EmbeddingModel string            `mapstructure:"embedding_model"`
	RequestTimeout time.Duration     `mapstructure:"request_timeout"`
	TopK           int               `mapstructure:"top_k"`
	VectorStore    VectorStoreConfig `mapstructure:"vector_store"`
}

type VectorStoreConfig struct {
	Type   string `mapstructure:"type"`
	Host   string `mapstructure:"host"`
	APIKey string `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Defaults mirror the reference deployment: a local OpenAI-compatible
	// endpoint serving qwen2.5:14b with a bge embedding model.
	v.SetDefault("port", "8080")
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("ai_endpoint", "http://localhost:11434/v1")
	v.SetDefault("provider", "openai")
	v.SetDefault("model", "qwen2.5:14b")
	v.SetDefault("embedding_model", "bge-large-en-v1.5")
	v.SetDefault("request_timeout", 120*time.Second)
	v.SetDefault("top_k", 2)
	v.SetDefault("vector_store.type", "memory")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("GEMINI_API_KEY")
	v.BindEnv("vector_store.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
