package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/svodka-hq/svodka-news-bot/internal/domain"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`

	SourcesFile string `mapstructure:"sources_file"`

	TickSeconds           int64         `mapstructure:"tick_seconds"`
	ScrapeIntervalSeconds int64         `mapstructure:"scrape_interval_seconds"`
	ScrapeLimit           int           `mapstructure:"scrape_limit"`
	SendDelaySeconds      int64         `mapstructure:"send_delay_seconds"`
	RetentionDays         int           `mapstructure:"retention_days"`
	Tick                  time.Duration `mapstructure:"-"`
	ScrapeInterval        time.Duration `mapstructure:"-"`
	SendDelay             time.Duration `mapstructure:"-"`

	BBoltPath string `mapstructure:"bbolt_path"`

	ChannelID              string `mapstructure:"channel_id"`
	PostingEnabled         bool   `mapstructure:"posting_enabled"`
	PostingIntervalMinutes int    `mapstructure:"posting_interval_minutes"`
	MaxArticlesPerDay      int    `mapstructure:"max_articles_per_day"`
	CustomHashtags         string `mapstructure:"custom_hashtags"`
	SummaryStyle           string `mapstructure:"summary_style"`
	AIProvider             string `mapstructure:"ai_provider"`

	TelegramBotToken string `mapstructure:"telegram_bot_token"`

	OpenRouterAPIKey     string `mapstructure:"openrouter_api_key"`
	OpenRouterBackupKey  string `mapstructure:"openrouter_backup_key"`
	OpenRouterBackupKey2 string `mapstructure:"openrouter_backup_key1"`
	OpenRouterModel      string `mapstructure:"openrouter_model"`
	GeminiAPIKey         string `mapstructure:"gemini_api_key"`
	SiteURL              string `mapstructure:"site_url"`
	SiteName             string `mapstructure:"site_name"`

	// EventWebhooks is a comma-separated list of URLs notified after each
	// successful delivery. Empty disables event fan-out.
	EventWebhooks string `mapstructure:"event_webhooks"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "svodka-news-bot")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("sources_file", "./configs/sources.yaml")
	v.SetDefault("tick_seconds", 60)
	v.SetDefault("scrape_interval_seconds", 900)
	v.SetDefault("scrape_limit", 150)
	v.SetDefault("send_delay_seconds", 2)
	v.SetDefault("retention_days", 30)
	v.SetDefault("bbolt_path", "./data/bot.db")
	v.SetDefault("posting_enabled", false)
	v.SetDefault("posting_interval_minutes", 60)
	v.SetDefault("max_articles_per_day", 100)
	v.SetDefault("custom_hashtags", "#новости #экономика")
	v.SetDefault("summary_style", "formal")
	v.SetDefault("ai_provider", "openrouter")
	v.SetDefault("openrouter_model", "deepseek/deepseek-r1-0528:free")
	v.SetDefault("site_url", "https://svodka-news-bot.app")
	v.SetDefault("site_name", "News Bot")

	// Env-only keys need a default registered for AutomaticEnv+Unmarshal to
	// pick them up.
	v.SetDefault("channel_id", "")
	v.SetDefault("telegram_bot_token", "")
	v.SetDefault("openrouter_api_key", "")
	v.SetDefault("openrouter_backup_key", "")
	v.SetDefault("openrouter_backup_key1", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("event_webhooks", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.TickSeconds <= 0 {
		return nil, fmt.Errorf("invalid tick_seconds (must be positive)")
	}
	if cfg.ScrapeIntervalSeconds <= 0 {
		return nil, fmt.Errorf("invalid scrape_interval_seconds (must be positive)")
	}
	if cfg.PostingIntervalMinutes <= 0 {
		return nil, fmt.Errorf("invalid posting_interval_minutes (must be positive)")
	}
	if cfg.MaxArticlesPerDay < 0 {
		return nil, fmt.Errorf("invalid max_articles_per_day (must not be negative)")
	}
	cfg.Tick = time.Duration(cfg.TickSeconds) * time.Second
	cfg.ScrapeInterval = time.Duration(cfg.ScrapeIntervalSeconds) * time.Second
	cfg.SendDelay = time.Duration(cfg.SendDelaySeconds) * time.Second

	switch strings.ToLower(strings.TrimSpace(cfg.AIProvider)) {
	case "openrouter", "gemini":
	default:
		return nil, fmt.Errorf("unsupported ai_provider %q (expected openrouter or gemini)", cfg.AIProvider)
	}

	return &cfg, nil
}

// Settings builds the read-only settings snapshot consumed by the pipeline.
func (c *Config) Settings() domain.Settings {
	return domain.Settings{
		ChannelID:         c.ChannelID,
		PostingEnabled:    c.PostingEnabled,
		PostingInterval:   time.Duration(c.PostingIntervalMinutes) * time.Minute,
		MaxArticlesPerDay: c.MaxArticlesPerDay,
		CustomHashtags:    c.CustomHashtags,
		SummaryStyle:      c.SummaryStyle,
		AIProvider:        c.AIProvider,
	}
}

// OpenRouterKeys returns the ordered key list: primary first, then backups.
// Empty keys are kept out of the list.
func (c *Config) OpenRouterKeys() []string {
	keys := make([]string, 0, 3)
	for _, k := range []string{c.OpenRouterAPIKey, c.OpenRouterBackupKey, c.OpenRouterBackupKey2} {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Webhooks splits the configured event webhook list.
func (c *Config) Webhooks() []string {
	if strings.TrimSpace(c.EventWebhooks) == "" {
		return nil
	}
	parts := strings.Split(c.EventWebhooks, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
