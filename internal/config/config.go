// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the root configuration structure.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Database      DatabaseConfig      `toml:"database"`
	Mikan         MikanConfig         `toml:"mikan"`
	TMDB          TMDBConfig          `toml:"tmdb"`
	OpenList      OpenListConfig      `toml:"openlist"`
	Scheduler     SchedulerConfig     `toml:"scheduler"`
	Notifications NotificationsConfig `toml:"notifications"`
}

type ServerConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	LogLevel string `toml:"log_level"`
}

// Addr is the listen address of the control API.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type MikanConfig struct {
	BaseURL  string `toml:"base_url"`
	RSSToken string `toml:"rss_token"`
	RSSURL   string `toml:"rss_url"` // overrides the token-derived feed
}

// FeedURL returns the aggregate subscription feed.
func (m MikanConfig) FeedURL() string {
	if m.RSSURL != "" {
		return m.RSSURL
	}
	if m.RSSToken == "" {
		return ""
	}
	return strings.TrimRight(m.BaseURL, "/") + "/RSS/MyBangumi?token=" + url.QueryEscape(m.RSSToken)
}

type TMDBConfig struct {
	APIKey   string        `toml:"api_key"`
	Language string        `toml:"language"`
	BaseURL  string        `toml:"base_url"`
	CacheTTL time.Duration `toml:"cache_ttl"`
}

type OpenListConfig struct {
	URL          string `toml:"url"`
	Username     string `toml:"username"`
	Password     string `toml:"password"`
	Root         string `toml:"root"`
	DownloadTool string `toml:"download_tool"`
	PageSize     int    `toml:"page_size"`
	MaxDepth     int    `toml:"max_depth"`
}

type SchedulerConfig struct {
	IntervalsFile    string        `toml:"intervals_file"`
	PushLimit        int           `toml:"push_limit"`
	DownloadTimeout  time.Duration `toml:"download_timeout"`
	ScrapeThrottle   time.Duration `toml:"scrape_throttle"`
	HistoryRetention time.Duration `toml:"history_retention"`
}

type NotificationsConfig struct {
	Telegram *TelegramConfig `toml:"telegram"`
}

type TelegramConfig struct {
	BotToken string  `toml:"bot_token"`
	ChatIDs  []int64 `toml:"chat_ids"`
}

// Load reads and parses the configuration file and applies defaults.
// Relative database and intervals paths are taken relative to the
// directory of path.
// Unresolved environment variables are reported as a *ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	cfg.resolvePaths(filepath.Dir(path))
	return &cfg, nil
}

// LoadValidated loads the file and validates the result, returning every
// problem at once as a *ConfigError.
func LoadValidated(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if ps := cfg.Validate(); len(ps) > 0 {
		return nil, &ConfigError{Path: path, Problems: ps}
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8585
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/autoani.db"
	}
	if c.Mikan.BaseURL == "" {
		c.Mikan.BaseURL = "https://mikanani.me"
	}
	if c.TMDB.Language == "" {
		c.TMDB.Language = "zh-CN"
	}
	if c.TMDB.CacheTTL == 0 {
		c.TMDB.CacheTTL = 24 * time.Hour
	}
	if c.OpenList.Root == "" {
		c.OpenList.Root = "/Animate/Bangumi"
	}
	if c.OpenList.PageSize == 0 {
		c.OpenList.PageSize = 100
	}
	if c.OpenList.MaxDepth == 0 {
		c.OpenList.MaxDepth = 16
	}
	if c.Scheduler.IntervalsFile == "" {
		c.Scheduler.IntervalsFile = "./data/intervals.toml"
	}
	if c.Scheduler.PushLimit == 0 {
		c.Scheduler.PushLimit = 5
	}
	if c.Scheduler.DownloadTimeout == 0 {
		c.Scheduler.DownloadTimeout = 24 * time.Hour
	}
	if c.Scheduler.ScrapeThrottle == 0 {
		c.Scheduler.ScrapeThrottle = 7 * 24 * time.Hour
	}
	if c.Scheduler.HistoryRetention == 0 {
		c.Scheduler.HistoryRetention = 90 * 24 * time.Hour
	}
}
