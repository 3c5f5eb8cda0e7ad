// Package config provides YAML-based configuration loading for wadash.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config is the top-level wadash configuration, loaded from wadash.yaml.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Log       LogConfig       `yaml:"log"`
	Notify    NotifyConfig    `yaml:"notify"`
	Journal   JournalConfig   `yaml:"journal"`
	Digest    DigestConfig    `yaml:"digest"`
}

// GatewayConfig locates the remote messaging gateway.
type GatewayConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// DashboardConfig holds web dashboard settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// LogConfig selects the zap profile and optional rotating log file.
type LogConfig struct {
	Mode       string `yaml:"mode"` // "development" or "production"
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// NotifyConfig configures the chat-platform notice sinks.
type NotifyConfig struct {
	Slack     SlackConfig   `yaml:"slack"`
	Discord   DiscordConfig `yaml:"discord"`
	AllLevels bool          `yaml:"all_levels"` // also forward success/info notices
}

// SlackConfig holds Slack bot settings. Empty BotToken disables the sink.
type SlackConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// DiscordConfig holds Discord bot settings. Empty BotToken disables the sink.
type DiscordConfig struct {
	BotToken  string `yaml:"bot_token"`
	ChannelID string `yaml:"channel_id"`
}

// JournalConfig configures the local activity journal. Empty Driver disables it.
type JournalConfig struct {
	Driver    string        `yaml:"driver"` // "sqlite" or "mysql"
	DSN       string        `yaml:"dsn"`
	Retention time.Duration `yaml:"retention"`
}

// DigestConfig schedules the periodic status digest. Empty Cron disables it.
type DigestConfig struct {
	Cron string `yaml:"cron"`
}

// Enabled reports whether the journal should be opened.
func (j JournalConfig) Enabled() bool { return j.Driver != "" }

// Load reads a YAML config file from path and returns a validated Config.
// A .env file next to the config (or in the working directory) is loaded
// first so ${VAR} references can pick up secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}
	return Parse(data)
}

// loadDotEnv loads env files without overriding variables already set.
// Missing files are not an error.
func loadDotEnv(paths ...string) error {
	for _, p := range append(paths, ".env") {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

// Parse expands ${VAR} references, unmarshals YAML bytes and validates.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
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
	c.Gateway.BaseURL = strings.TrimSuffix(strings.TrimSpace(c.Gateway.BaseURL), "/")
	if c.Gateway.Timeout == 0 {
		c.Gateway.Timeout = 15 * time.Second
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8090
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "development"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 64
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 7
	}
	if c.Log.MaxAgeDays == 0 {
		c.Log.MaxAgeDays = 7
	}
	if c.Journal.Driver == "sqlite" && c.Journal.DSN == "" {
		c.Journal.DSN = "wadash.db"
	}
	if c.Journal.Retention == 0 {
		c.Journal.Retention = 30 * 24 * time.Hour
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Gateway.BaseURL == "" {
		errs = append(errs, "gateway.base_url is required")
	} else if u, err := url.Parse(c.Gateway.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Sprintf("gateway.base_url %q must be an http(s) URL", c.Gateway.BaseURL))
	}
	if c.Gateway.Timeout < 0 {
		errs = append(errs, "gateway.timeout must not be negative")
	}
	if c.Dashboard.Port < 0 || c.Dashboard.Port > 65535 {
		errs = append(errs, fmt.Sprintf("dashboard.port %d out of range", c.Dashboard.Port))
	}
	switch c.Log.Mode {
	case "development", "production":
	default:
		errs = append(errs, fmt.Sprintf("log.mode %q must be development or production", c.Log.Mode))
	}
	if c.Notify.Slack.BotToken != "" && c.Notify.Slack.ChannelID == "" {
		errs = append(errs, "notify.slack.channel_id is required when bot_token is set")
	}
	if c.Notify.Discord.BotToken != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required when bot_token is set")
	}
	switch c.Journal.Driver {
	case "", "sqlite":
	case "mysql":
		if c.Journal.DSN == "" {
			errs = append(errs, "journal.dsn is required for mysql")
		} else if _, err := mysqldrv.ParseDSN(c.Journal.DSN); err != nil {
			errs = append(errs, fmt.Sprintf("journal.dsn: %v", err))
		}
	default:
		errs = append(errs, fmt.Sprintf("journal.driver %q must be sqlite or mysql", c.Journal.Driver))
	}
	if c.Digest.Cron != "" {
		if _, err := CronParser.Parse(c.Digest.Cron); err != nil {
			errs = append(errs, fmt.Sprintf("digest.cron: %v", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// CronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var CronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
