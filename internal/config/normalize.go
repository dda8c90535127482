package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
)

// enum provides case-insensitive string-to-enum normalization.
type enum[T ~string] struct {
	name         string
	values       map[string]T
	defaultValue T
	validKeys    []string
}

func newEnum[T ~string](name string, values map[string]T, defaultValue T) *enum[T] {
	normalized := make(map[string]T, len(values))
	keys := make([]string, 0, len(values))
	for k, v := range values {
		nk := normalizeKey(k)
		normalized[nk] = v
		keys = append(keys, nk)
	}
	sort.Strings(keys)
	return &enum[T]{name: name, values: normalized, defaultValue: defaultValue, validKeys: keys}
}

// Normalize returns the matching value or the default for unknown input.
func (e *enum[T]) Normalize(raw string) T {
	if v, ok := e.values[normalizeKey(raw)]; ok {
		return v
	}
	return e.defaultValue
}

// NormalizeWithError rejects unknown input.
func (e *enum[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := e.values[normalizeKey(raw)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %v", e.name, raw, e.validKeys)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeConfig canonicalizes enumerated fields in place. Unknown log
// settings fall back to defaults with a warning; an unknown backend is an error.
func NormalizeConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("config nil")
	}

	if strings.TrimSpace(string(c.Backend)) != "" {
		b, err := ParseBackend(string(c.Backend))
		if err != nil {
			return cerrors.ConfigInvalid("backend", err.Error())
		}
		c.Backend = b
	}

	if raw := string(c.Logging.Level); strings.TrimSpace(raw) != "" {
		lvl := NormalizeLogLevel(raw)
		if normalizeKey(raw) != string(lvl) && normalizeKey(raw) != "warning" {
			slog.Warn("Unknown logging.level, using default", "value", raw, "default", lvl)
		}
		c.Logging.Level = lvl
	}

	if raw := string(c.Logging.Format); strings.TrimSpace(raw) != "" {
		f := NormalizeLogFormat(raw)
		if normalizeKey(raw) != string(f) {
			slog.Warn("Unknown logging.format, using default", "value", raw, "default", f)
		}
		c.Logging.Format = f
	}

	if raw := string(c.Jupyter.Retry.Backoff); strings.TrimSpace(raw) != "" {
		mode := NormalizeRetryBackoff(raw)
		if normalizeKey(raw) != string(mode) {
			slog.Warn("Unknown jupyter.retry.backoff, using default", "value", raw, "default", mode)
		}
		c.Jupyter.Retry.Backoff = mode
	}

	c.Output.Suffix = strings.TrimSpace(c.Output.Suffix)
	c.Jupyter.BaseURL = strings.TrimRight(strings.TrimSpace(c.Jupyter.BaseURL), "/")
	return nil
}
