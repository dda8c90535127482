package config

import (
	"net/url"
	"strings"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
)

// ValidateConfig validates a normalized configuration with defaults applied.
func ValidateConfig(cfg *Config) error {
	if cfg.Version != "1" {
		return cerrors.ConfigInvalid("version", "unsupported configuration version "+cfg.Version+" (expected 1)")
	}

	if cfg.Backend == BackendJupyter {
		u, err := url.Parse(cfg.Jupyter.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return cerrors.ConfigInvalid("jupyter.base_url", "must be an absolute http(s) URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return cerrors.ConfigInvalid("jupyter.base_url", "unsupported scheme "+u.Scheme)
		}
	}

	if r := cfg.Jupyter.Retry.MaxRetries; r != nil && *r < 0 {
		return cerrors.ConfigInvalid("jupyter.retry.max_retries", "cannot be negative")
	}

	if !strings.HasPrefix(cfg.Output.Suffix, ".") {
		return cerrors.ConfigInvalid("output.suffix", "must start with a dot")
	}

	for _, arg := range cfg.Viewer.Command {
		if strings.TrimSpace(arg) == "" {
			return cerrors.ConfigInvalid("viewer.command", "arguments must not be empty")
		}
	}

	return nil
}
