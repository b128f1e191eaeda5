package config

import (
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration and returns every problem found.
// Absent credentials and endpoints are Required problems.
func (c *Config) Validate() []Problem {
	var ps []Problem

	if c.Server.Port != 0 && (c.Server.Port < 1 || c.Server.Port > 65535) {
		ps = append(ps, invalid("server.port", "must be between 1 and 65535, got %d", c.Server.Port))
	}
	if !validLogLevels[c.Server.LogLevel] {
		ps = append(ps, invalid("server.log_level", "must be one of debug, info, warn, error; got %q", c.Server.LogLevel))
	}

	// Mikan
	if c.Mikan.RSSToken == "" && c.Mikan.RSSURL == "" {
		ps = append(ps, required("mikan.rss_token", "rss_token or rss_url is required"))
	}
	ps = appendURLProblem(ps, "mikan.base_url", c.Mikan.BaseURL)
	if c.Mikan.RSSURL != "" {
		ps = appendURLProblem(ps, "mikan.rss_url", c.Mikan.RSSURL)
	}

	// TMDB
	if c.TMDB.APIKey == "" {
		ps = append(ps, required("tmdb.api_key", "required"))
	}
	if c.TMDB.CacheTTL < 0 {
		ps = append(ps, invalid("tmdb.cache_ttl", "must not be negative"))
	}

	// OpenList
	if c.OpenList.URL == "" {
		ps = append(ps, required("openlist.url", "required"))
	} else {
		ps = appendURLProblem(ps, "openlist.url", c.OpenList.URL)
	}
	if c.OpenList.Username == "" {
		ps = append(ps, required("openlist.username", "required"))
	}
	if c.OpenList.Password == "" {
		ps = append(ps, required("openlist.password", "required"))
	}
	if c.OpenList.PageSize < 1 {
		ps = append(ps, invalid("openlist.page_size", "must be at least 1, got %d", c.OpenList.PageSize))
	}
	if c.OpenList.MaxDepth < 1 {
		ps = append(ps, invalid("openlist.max_depth", "must be at least 1, got %d", c.OpenList.MaxDepth))
	}

	// Scheduler
	if c.Scheduler.PushLimit < 0 {
		ps = append(ps, invalid("scheduler.push_limit", "must not be negative, got %d", c.Scheduler.PushLimit))
	}
	if c.Scheduler.DownloadTimeout < 0 {
		ps = append(ps, invalid("scheduler.download_timeout", "must not be negative"))
	}
	if c.Scheduler.ScrapeThrottle < 0 {
		ps = append(ps, invalid("scheduler.scrape_throttle", "must not be negative"))
	}
	if c.Scheduler.HistoryRetention < 0 {
		ps = append(ps, invalid("scheduler.history_retention", "must not be negative"))
	}

	if t := c.Notifications.Telegram; t != nil {
		if t.BotToken == "" {
			ps = append(ps, required("notifications.telegram.bot_token", "required when telegram is configured"))
		}
		if len(t.ChatIDs) == 0 {
			ps = append(ps, required("notifications.telegram.chat_ids", "at least one chat id required"))
		}
	}

	return ps
}

func appendURLProblem(ps []Problem, key, raw string) []Problem {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return append(ps, invalid(key, "must be an http(s) URL, got %q", raw))
	}
	return ps
}
