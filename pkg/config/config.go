package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "SCRAPER_CONFIG"
	portEnv           = "PORT"
	scrapingURLEnv    = "SCRAPING_URL"
	chromePathEnv     = "CHROME_PATH"
	airtableKeyEnv    = "AIRTABLE_API_KEY"
	airtableBaseEnv   = "AIRTABLE_BASE_ID"
	airtableTableEnv  = "AIRTABLE_TABLE_NAME"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	webhookURLEnv     = "WEBHOOK_URL"
	logLevelEnv       = "LOG_LEVEL"
)

// Store backends.
const (
	StoreAirtable = "airtable"
	StoreSQLite   = "sqlite"
	StoreLibSQL   = "libsql"
)

// Notification channels.
const (
	NotifyTelegram = "telegram"
	NotifyEmail    = "email"
	NotifyNone     = "none"
)

// ScraperConfig holds the browser and target page settings.
type ScraperConfig struct {
	URL               string        `yaml:"url"`
	Headless          *bool         `yaml:"headless"`
	ChromePath        string        `yaml:"chrome_path"`
	NoSandbox         *bool         `yaml:"no_sandbox"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
}

// AirtableConfig addresses the baseline table in Airtable.
type AirtableConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	BaseID  string `yaml:"base_id"`
	Table   string `yaml:"table"`
}

// DatabaseConfig addresses a SQL baseline store.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// StoreConfig selects and configures the baseline store.
type StoreConfig struct {
	Backend   string         `yaml:"backend"`
	ChunkSize int            `yaml:"chunk_size"`
	Airtable  AirtableConfig `yaml:"airtable"`
	Database  DatabaseConfig `yaml:"database"`
}

// TelegramConfig wires the bot used for digests.
type TelegramConfig struct {
	BaseURL  string `yaml:"base_url"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// EmailConfig wires the SMTP relay used for digests.
type EmailConfig struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
	Subject  string   `yaml:"subject"`
}

// NotifyConfig selects the digest channel.
type NotifyConfig struct {
	Channel  string         `yaml:"channel"`
	Telegram TelegramConfig `yaml:"telegram"`
	Email    EmailConfig    `yaml:"email"`
}

// ForwardConfig holds the default push target of the forward mode.
type ForwardConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// ServerConfig holds the HTTP trigger settings.
type ServerConfig struct {
	Port string `yaml:"port"`
}

// ScheduleConfig drives the watch mode.
type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TracingConfig enables OTLP trace export when an endpoint is set.
type TracingConfig struct {
	Endpoint string            `yaml:"endpoint"`
	Headers  map[string]string `yaml:"headers"`
}

// Config is the complete structure for the config.yml file.
type Config struct {
	Scraper  ScraperConfig  `yaml:"scraper"`
	Store    StoreConfig    `yaml:"store"`
	Notify   NotifyConfig   `yaml:"notify"`
	Forward  ForwardConfig  `yaml:"forward"`
	Server   ServerConfig   `yaml:"server"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Log      LogConfig      `yaml:"log"`
	Tracing  TracingConfig  `yaml:"tracing"`
}

// HeadlessEnabled reports the effective headless flag.
func (s ScraperConfig) HeadlessEnabled() bool {
	return s.Headless == nil || *s.Headless
}

// NoSandboxEnabled reports the effective no-sandbox flag.
func (s ScraperConfig) NoSandboxEnabled() bool {
	return s.NoSandbox != nil && *s.NoSandbox
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Scraper: ScraperConfig{NavigationTimeout: 2 * time.Minute},
		Store: StoreConfig{
			Backend:   StoreAirtable,
			ChunkSize: 10,
			Database:  DatabaseConfig{DSN: "baseline.db"},
		},
		Notify: NotifyConfig{
			Channel: NotifyTelegram,
			Email:   EmailConfig{Port: 587, Subject: "Stock changes"},
		},
		Server:   ServerConfig{Port: "8080"},
		Schedule: ScheduleConfig{Cron: "*/30 * * * *"},
		Log:      LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads an optional .env file, then the YAML file at path (or the one
// named by SCRAPER_CONFIG), merges it over the defaults and finally applies
// environment overrides. A missing config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if v := os.Getenv(configPathEnv); v != "" {
		path = v
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			var fileCfg Config
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
			if err := mergo.Merge(&fileCfg, cfg); err != nil {
				return nil, fmt.Errorf("merge config defaults: %w", err)
			}
			cfg = fileCfg
		}
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env string
		dst *string
	}{
		{portEnv, &c.Server.Port},
		{scrapingURLEnv, &c.Scraper.URL},
		{chromePathEnv, &c.Scraper.ChromePath},
		{airtableKeyEnv, &c.Store.Airtable.APIKey},
		{airtableBaseEnv, &c.Store.Airtable.BaseID},
		{airtableTableEnv, &c.Store.Airtable.Table},
		{telegramTokenEnv, &c.Notify.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notify.Telegram.ChatID},
		{webhookURLEnv, &c.Forward.WebhookURL},
		{logLevelEnv, &c.Log.Level},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

// Validate checks the settings needed by the store-backed pipeline.
func (c *Config) Validate() error {
	var errs []error
	if c.Scraper.URL == "" {
		errs = append(errs, errors.New("scraper.url (SCRAPING_URL) is required"))
	}
	if c.Store.ChunkSize <= 0 {
		errs = append(errs, errors.New("store.chunk_size must be positive"))
	}

	switch strings.ToLower(c.Store.Backend) {
	case StoreAirtable:
		a := c.Store.Airtable
		if a.APIKey == "" || a.BaseID == "" || a.Table == "" {
			errs = append(errs, errors.New("store.airtable needs api_key, base_id and table"))
		}
	case StoreSQLite, StoreLibSQL:
		if c.Store.Database.DSN == "" {
			errs = append(errs, errors.New("store.database.dsn is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}

	switch strings.ToLower(c.Notify.Channel) {
	case NotifyTelegram:
		if c.Notify.Telegram.BotToken == "" || c.Notify.Telegram.ChatID == "" {
			errs = append(errs, errors.New("notify.telegram needs bot_token and chat_id"))
		}
	case NotifyEmail:
		if c.Notify.Email.Server == "" || len(c.Notify.Email.To) == 0 {
			errs = append(errs, errors.New("notify.email needs server and to"))
		}
	case NotifyNone, "":
	default:
		errs = append(errs, fmt.Errorf("unknown notify channel %q", c.Notify.Channel))
	}
	return errors.Join(errs...)
}
