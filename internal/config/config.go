package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "PROPOSAL_REVIEWER_CONFIG"
	httpAddrEnv    = "HTTP_ADDR"
	databaseDSNEnv = "DATABASE_DSN"
	llmEndpointEnv = "LLM_ENDPOINT"
	llmModelEnv    = "LLM_MODEL"
	llmAPIKeyEnv   = "LLM_API_KEY"
	webhookURLEnv  = "WEBHOOK_URL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	LLM       LLMConfig       `yaml:"llm"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Retention RetentionConfig `yaml:"retention"`
}

// LoggingConfig selects handler level and format ("text" or "json").
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN
// disables persistence; reviews then run purely in-memory.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// LLMConfig defines how to contact the completion provider.
type LLMConfig struct {
	Endpoint              string `yaml:"endpoint"`
	Model                 string `yaml:"model"`
	APIKey                string `yaml:"apiKey"`
	RequestTimeoutSeconds int    `yaml:"requestTimeoutSeconds"`
}

// WebhookConfig wires the optional batch-completion webhook.
type WebhookConfig struct {
	URL string `yaml:"url"`
}

// RetentionConfig controls the optional stored-batch sweeper.
type RetentionConfig struct {
	Enabled            bool `yaml:"enabled"`
	MaxAgeHours        int  `yaml:"maxAgeHours"`
	SweepIntervalHours int  `yaml:"sweepIntervalHours"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(llmEndpointEnv); v != "" {
		c.LLM.Endpoint = v
	}
	if v := os.Getenv(llmModelEnv); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv(llmAPIKeyEnv); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(webhookURLEnv); v != "" {
		c.Webhook.URL = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.LLM.Endpoint != "" {
		base.LLM.Endpoint = override.LLM.Endpoint
	}
	if override.LLM.Model != "" {
		base.LLM.Model = override.LLM.Model
	}
	if override.LLM.APIKey != "" {
		base.LLM.APIKey = override.LLM.APIKey
	}
	if override.LLM.RequestTimeoutSeconds > 0 {
		base.LLM.RequestTimeoutSeconds = override.LLM.RequestTimeoutSeconds
	}

	if override.Webhook.URL != "" {
		base.Webhook.URL = override.Webhook.URL
	}

	if override.Retention.Enabled {
		base.Retention.Enabled = true
	}
	if override.Retention.MaxAgeHours > 0 {
		base.Retention.MaxAgeHours = override.Retention.MaxAgeHours
	}
	if override.Retention.SweepIntervalHours > 0 {
		base.Retention.SweepIntervalHours = override.Retention.SweepIntervalHours
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server:  ServerConfig{Addr: ":8080"},
		LLM: LLMConfig{
			Endpoint:              "https://api.openai.com/v1/chat/completions",
			Model:                 "gpt-4o-mini",
			APIKey:                "",
			RequestTimeoutSeconds: 120,
		},
		Retention: RetentionConfig{
			Enabled:            false,
			MaxAgeHours:        24 * 30,
			SweepIntervalHours: 24,
		},
	}
}
