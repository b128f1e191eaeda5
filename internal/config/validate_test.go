package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := &Config{
		Mikan:    MikanConfig{RSSToken: "tok"},
		TMDB:     TMDBConfig{APIKey: "key"},
		OpenList: OpenListConfig{URL: "http://openlist:5244", Username: "admin", Password: "secret"},
	}
	cfg.applyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	assert.Empty(t, validConfig().Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "trace" }, "server.log_level"},
		{"no feed", func(c *Config) { c.Mikan.RSSToken = "" }, "mikan.rss_token: rss_token or rss_url"},
		{"bad rss url", func(c *Config) { c.Mikan.RSSURL = "ftp://x" }, "mikan.rss_url"},
		{"no tmdb key", func(c *Config) { c.TMDB.APIKey = "" }, "tmdb.api_key"},
		{"no openlist url", func(c *Config) { c.OpenList.URL = "" }, "openlist.url: required"},
		{"relative openlist url", func(c *Config) { c.OpenList.URL = "openlist:5244" }, "openlist.url: must be"},
		{"no username", func(c *Config) { c.OpenList.Username = "" }, "openlist.username"},
		{"no password", func(c *Config) { c.OpenList.Password = "" }, "openlist.password"},
		{"page size", func(c *Config) { c.OpenList.PageSize = -1 }, "openlist.page_size"},
		{"negative push limit", func(c *Config) { c.Scheduler.PushLimit = -1 }, "scheduler.push_limit"},
		{"negative timeout", func(c *Config) { c.Scheduler.DownloadTimeout = -time.Hour }, "scheduler.download_timeout"},
		{"negative retention", func(c *Config) { c.Scheduler.HistoryRetention = -time.Hour }, "scheduler.history_retention"},
		{"telegram without chats", func(c *Config) {
			c.Notifications.Telegram = &TelegramConfig{BotToken: "123:abc"}
		}, "notifications.telegram.chat_ids"},
		{"telegram without token", func(c *Config) {
			c.Notifications.Telegram = &TelegramConfig{ChatIDs: []int64{1}}
		}, "notifications.telegram.bot_token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			ps := cfg.Validate()
			assert.NotEmpty(t, ps)
			var lines []string
			for _, p := range ps {
				lines = append(lines, p.String())
			}
			assert.Contains(t, strings.Join(lines, "\n"), tt.want)
		})
	}
}

func TestValidate_RSSURLAloneIsEnough(t *testing.T) {
	cfg := validConfig()
	cfg.Mikan.RSSToken = ""
	cfg.Mikan.RSSURL = "https://mikanani.me/RSS/MyBangumi?token=x"
	assert.Empty(t, cfg.Validate())
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	ps := cfg.Validate()
	assert.GreaterOrEqual(t, len(ps), 5)
}

func TestValidate_MarksRequired(t *testing.T) {
	cfg := validConfig()
	cfg.TMDB.APIKey = ""
	cfg.Server.Port = 70000

	ps := cfg.Validate()
	assert.Contains(t, ps, Problem{Key: "tmdb.api_key", Message: "required", Required: true})
	for _, p := range ps {
		if p.Key == "server.port" {
			assert.False(t, p.Required)
		}
	}
}
