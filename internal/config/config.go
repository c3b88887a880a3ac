package config

import (
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server ServerConfig
	OpenAI OpenAIConfig
	Cache  CacheConfig
	Data   DataConfig
}

type ServerConfig struct {
	Port         string        `envconfig:"SERVER_PORT" default:"8000"`
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"120s"`
}

type OpenAIConfig struct {
	Provider       string `envconfig:"OPENAI_PROVIDER" default:"openai"`
	APIKey         string `envconfig:"OPENAI_API_KEY" required:"true"`
	APIEndpoint    string `envconfig:"OPENAI_ENDPOINT" default:"https://api.openai.com/v1"`
	Model          string `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	DeploymentName string `envconfig:"OPENAI_DEPLOYMENT" default:"gpt-4o"`
	APIVersion     string `envconfig:"OPENAI_API_VERSION" default:"2023-05-15"`
}

type CacheConfig struct {
	// TTL bounds how long an analysis result is served from cache.
	TTL time.Duration `envconfig:"CACHE_TTL" default:"1h"`
	// Path selects the persistent SQLite store; empty means in-memory.
	Path string `envconfig:"CACHE_PATH"`
}

type DataConfig struct {
	// Dir is preloaded into the dataset registry at startup.
	Dir string `envconfig:"DATA_DIR"`
	// Watch reloads datasets and invalidates the cache when files in Dir
	// change.
	Watch bool `envconfig:"DATA_WATCH" default:"true"`
}

func LoadConfig() (*Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("configuration loaded successfully")
	return &cfg, nil
}
