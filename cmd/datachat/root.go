package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/deepblue-labs/datachat/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "datachat",
	Short: "Ask natural-language questions about tabular data files",
	Long: `datachat loads a tabular data file (CSV, TSV, JSON or TXT) and answers
natural-language questions about it using an LLM-driven agent. Results come
back as a short answer, a table, or a chart rendered in the terminal.`,
	SilenceUsage: true,
}

// cliConfig is the optional ~/.datachat.yaml file. Environment variables
// override it.
type cliConfig struct {
	APIKey   string `yaml:"api_key"`
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Style    string `yaml:"style"`
}

func loadCLIConfig() cliConfig {
	var cfg cliConfig
	home, err := os.UserHomeDir()
	if err == nil {
		data, err := os.ReadFile(filepath.Join(home, ".datachat.yaml"))
		if err == nil {
			_ = yaml.Unmarshal(data, &cfg)
		}
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv("OPENAI_ENDPOINT"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Model = v
	}
	return cfg
}

func (c cliConfig) openAIConfig() *config.OpenAIConfig {
	cfg := &config.OpenAIConfig{
		Provider:    "openai",
		APIKey:      c.APIKey,
		APIEndpoint: "https://api.openai.com/v1",
		Model:       "gpt-4o-mini",
	}
	if c.Endpoint != "" {
		cfg.APIEndpoint = c.Endpoint
	}
	if c.Model != "" {
		cfg.Model = c.Model
	}
	return cfg
}

// cachePath returns the CLI's persistent cache database location.
func cachePath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "datachat")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache.db"), nil
}
