package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Port                  string              `mapstructure:"port"`
	UploadDir             string              `mapstructure:"upload_dir"`
	ChunkDir              string              `mapstructure:"chunk_dir"`
	VectorStore           string              `mapstructure:"vector_store"` // "weaviate" or "file"
	MaxChunkSize          int                 `mapstructure:"max_chunk_size"`
	OverlapSize           int                 `mapstructure:"overlap_size"`
	AsyncThresholdSeconds int                 `mapstructure:"async_threshold_seconds"`
	AnalyticsEndpoint     string              `mapstructure:"analytics_endpoint"`
	OpenAIAPIKey          string              `mapstructure:"OPENAI_API_KEY"`
	WeaviateStoreConfig   WeaviateStoreConfig `mapstructure:"weaviate_store_config"`
}

type WeaviateStoreConfig struct {
	Host         string       `mapstructure:"host"`
	APIKey       string       `mapstructure:"WEAVIATE_APIKEY"` // Changed to match env var
	Text2Vec     string       `mapstructure:"text2vec"`
	ModuleConfig ModuleConfig `mapstructure:"module_config"`
}

type ModuleConfig map[string]interface{}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set up Viper to read from config file
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetDefault("port", "8000")
	v.SetDefault("upload_dir", "data/user_pdf_raw")
	v.SetDefault("chunk_dir", "data/user_pdf_chunks")
	v.SetDefault("vector_store", "file")
	v.SetDefault("max_chunk_size", 1000)
	v.SetDefault("overlap_size", 0)
	v.SetDefault("async_threshold_seconds", 20)

	// Set up Viper to read from environment variables
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Bind environment variables
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("WEAVIATE_APIKEY")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
