package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when CONFIG_PATH is not set. A missing default file is not an error.
const DefaultConfigPath = "config/development.yaml"

// Config represents the application configuration
type Config struct {
	AI      AIConfig      `yaml:"ai"`
	GitHub  GitHubConfig  `yaml:"github"`
	Log     LogConfig     `yaml:"log"`
	Secrets SecretsConfig `yaml:"-"`
}

// AIConfig selects the model backend and its retry policy
type AIConfig struct {
	Provider string      `yaml:"provider"`
	Model    string      `yaml:"model"`
	Retry    RetryConfig `yaml:"retry"`
}

// RetryConfig contains the backoff policy applied to model calls
type RetryConfig struct {
	MaxRetries  int           `yaml:"max_retries"`
	BaseBackoff time.Duration `yaml:"base_backoff"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
	MaxJitter   time.Duration `yaml:"max_jitter"`
}

// GitHubConfig contains repository hosting configuration
type GitHubConfig struct {
	BaseURL       string `yaml:"base_url"`
	UploadURL     string `yaml:"upload_url"`
	CommitMessage string `yaml:"commit_message"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// SecretsConfig is populated from the process environment only.
type SecretsConfig struct {
	GitHubToken     string `env:"GITHUB_TOKEN,required"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	GCPProjectID    string `env:"GCP_PROJECT_ID"`
	GCPRegion       string `env:"GCP_REGION,default=us-central1"`
	ConfigPath      string `env:"CONFIG_PATH"`
	Provider        string `env:"AI_PROVIDER"`
	Model           string `env:"AI_MODEL"`
	LogLevel        string `env:"LOG_LEVEL"`
}

// Default returns the configuration used when no file overrides it
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "anthropic",
			Model:    "claude-sonnet-4-5",
			Retry: RetryConfig{
				MaxRetries:  0,
				BaseBackoff: time.Second,
				MaxBackoff:  60 * time.Second,
				MaxJitter:   500 * time.Millisecond,
			},
		},
		GitHub: GitHubConfig{
			CommitMessage: "Remediated code",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from the process environment and the config file.
// It fails when GITHUB_TOKEN is not set.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith is Load with an explicit environment lookuper
func LoadWith(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var secrets SecretsConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &secrets,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg := Default()

	configPath := secrets.ConfigPath
	explicit := configPath != ""
	if !explicit {
		configPath = DefaultConfigPath
	}
	if err := cfg.readFile(configPath); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if secrets.Provider != "" {
		cfg.AI.Provider = secrets.Provider
	}
	if secrets.Model != "" {
		cfg.AI.Model = secrets.Model
	}
	if secrets.LogLevel != "" {
		cfg.Log.Level = secrets.LogLevel
	}
	cfg.Secrets = secrets

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// Validate checks the configuration for values the components cannot work with
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Secrets.GitHubToken) == "" {
		return errors.New("GITHUB_TOKEN is not set in the environment")
	}
	if c.AI.Provider == "" {
		return errors.New("ai.provider must be set")
	}
	if c.AI.Model == "" {
		return errors.New("ai.model must be set")
	}
	if c.AI.Retry.MaxRetries < 0 {
		return errors.New("ai.retry.max_retries cannot be negative")
	}
	return nil
}

// LogLevel returns the slog level named by log.level, defaulting to info
func (c *Config) LogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}
