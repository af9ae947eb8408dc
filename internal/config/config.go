// Package config provides YAML-based configuration loading for Zeta.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Zeta configuration, loaded from zeta.yaml.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Storage   StorageConfig   `yaml:"storage"`
	Autonomy  AutonomyConfig  `yaml:"autonomy"`
	Server    ServerConfig    `yaml:"server"`
	Reminders RemindersConfig `yaml:"reminders"`
	Notifiers NotifiersConfig `yaml:"notifiers"`
}

// DatabaseConfig holds connection settings for the MySQL server.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// OpenAIConfig configures the chat-completion provider. APIKey may be left
// empty in the file and supplied via OPENAI_API_KEY.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// StorageConfig configures local blob storage for generated files.
type StorageConfig struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

// AutonomyConfig sets the default trust policy for plan application.
type AutonomyConfig struct {
	Policy string `yaml:"policy"` // off, shadow, ask, auto
}

// ServerConfig configures the JSON API server.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RemindersConfig configures the calendar reminder scheduler.
type RemindersConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Schedule string `yaml:"schedule"` // 5-field cron expression
}

// NotifiersConfig holds credentials for the outbound notifiers. A notifier
// is enabled when its token is set.
type NotifiersConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Slack    SlackConfig    `yaml:"slack"`
	Discord  DiscordConfig  `yaml:"discord"`
}

// TelegramConfig holds Telegram Bot API credentials.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// SlackConfig holds Slack bot credentials.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord bot credentials.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Database.Name == "" {
		c.Database.Name = "zeta"
	}
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "data/files"
	}
	if c.Storage.BaseURL == "" {
		c.Storage.BaseURL = fmt.Sprintf("http://localhost:%d/files", c.Server.Port)
	}
	if c.Autonomy.Policy == "" {
		c.Autonomy.Policy = "shadow"
	}
	if c.Reminders.Schedule == "" {
		c.Reminders.Schedule = "* * * * *"
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Autonomy.Policy {
	case "off", "shadow", "ask", "auto":
	default:
		errs = append(errs, fmt.Sprintf("autonomy.policy %q is not one of off/shadow/ask/auto", c.Autonomy.Policy))
	}
	if c.Notifiers.Telegram.BotToken != "" && c.Notifiers.Telegram.ChatID == "" {
		errs = append(errs, "notifiers.telegram.chat_id is required when bot_token is set")
	}
	if c.Notifiers.Slack.BotToken != "" && c.Notifiers.Slack.ChannelID == "" {
		errs = append(errs, "notifiers.slack.channel_id is required when bot_token is set")
	}
	if c.Notifiers.Discord.BotToken != "" && c.Notifiers.Discord.ChannelID == "" {
		errs = append(errs, "notifiers.discord.channel_id is required when bot_token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
