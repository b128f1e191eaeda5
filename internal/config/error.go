package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

// Problem is one defect in a config file.
type Problem struct {
	Key      string // dotted TOML key, or a section for cross-field rules
	Message  string
	Required bool // a setting the daemon cannot start without is absent
}

func (p Problem) String() string {
	return p.Key + ": " + p.Message
}

func required(key, msg string) Problem {
	return Problem{Key: key, Message: msg, Required: true}
}

func invalid(key, format string, args ...any) Problem {
	return Problem{Key: key, Message: fmt.Sprintf(format, args...)}
}

// ConfigError is a startup configuration failure. Every unresolved
// environment reference and every validation problem of one file is
// collected into a single error; the daemon exits on it before anything
// is scheduled.
type ConfigError struct {
	Path     string
	Missing  []string // unresolved environment references
	Problems []Problem
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing environment variables: "+strings.Join(e.Missing, ", "))
	}
	if req := e.RequiredKeys(); len(req) > 0 {
		parts = append(parts, "required settings not set: "+strings.Join(req, ", "))
	}
	var rest []string
	for _, p := range e.Problems {
		if !p.Required {
			rest = append(rest, "  - "+p.String())
		}
	}
	if len(rest) > 0 {
		parts = append(parts, "invalid settings:")
		parts = append(parts, rest...)
	}
	return strings.Join(parts, "\n")
}

// HasErrors reports whether anything was collected.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Problems) > 0
}

// RequiredKeys lists the required settings that are absent, in file order.
func (e *ConfigError) RequiredKeys() []string {
	var keys []string
	for _, p := range e.Problems {
		if p.Required {
			keys = append(keys, p.Key)
		}
	}
	return keys
}

// Sections lists the top-level config sections with problems, sorted.
func (e *ConfigError) Sections() []string {
	var out []string
	for _, p := range e.Problems {
		section, _, _ := strings.Cut(p.Key, ".")
		if !slices.Contains(out, section) {
			out = append(out, section)
		}
	}
	slices.Sort(out)
	return out
}

// LogValue groups the failure for structured logging.
func (e *ConfigError) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("path", e.Path)}
	if len(e.Missing) > 0 {
		attrs = append(attrs, slog.Any("missing_env", e.Missing))
	}
	if req := e.RequiredKeys(); len(req) > 0 {
		attrs = append(attrs, slog.Any("required", req))
	}
	if s := e.Sections(); len(s) > 0 {
		attrs = append(attrs, slog.Any("sections", s))
	}
	attrs = append(attrs, slog.Int("problems", len(e.Problems)))
	return slog.GroupValue(attrs...)
}
