package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
)

// DefaultPath is the configuration file looked up when -c is not given.
const DefaultPath = "dockbook.yaml"

// Config represents the application configuration
type Config struct {
	Version string        `yaml:"version"`
	Backend Backend       `yaml:"backend"`
	Jupyter JupyterConfig `yaml:"jupyter"`
	Output  OutputConfig  `yaml:"output"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Watch   WatchConfig   `yaml:"watch"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// JupyterConfig points at a running Jupyter Server whose contents API is used
// when backend is "jupyter".
type JupyterConfig struct {
	BaseURL string        `yaml:"base_url"`
	Token   string        `yaml:"token,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
	Retry   RetryConfig   `yaml:"retry"`
}

// RetryConfig controls retries of transient contents API failures.
type RetryConfig struct {
	Backoff    RetryBackoffMode `yaml:"backoff"`
	Initial    time.Duration    `yaml:"initial"`
	Max        time.Duration    `yaml:"max"`
	MaxRetries *int             `yaml:"max_retries"` // 0 disables retries
}

// OutputConfig controls where and how notebooks are written.
type OutputConfig struct {
	Suffix  string `yaml:"suffix"`            // appended to the source path
	Compact bool   `yaml:"compact,omitempty"` // single-line JSON instead of nbformat's indent of 1
}

// ViewerConfig describes the command used to open a written notebook.
// "{path}" and "{url}" placeholders in Command are substituted; without a
// placeholder the target is appended as the last argument. An empty Command
// selects a default for the backend, see CommandFor.
type ViewerConfig struct {
	Enabled bool     `yaml:"enabled"`
	Command []string `yaml:"command,omitempty"`
}

// CommandFor returns the configured command or the default for backend.
// Local notebooks open in "jupyter lab"; notebooks stored on a Jupyter
// Server open their tree URL in the desktop browser.
func (v ViewerConfig) CommandFor(backend Backend) []string {
	if len(v.Command) > 0 {
		return v.Command
	}
	if backend == BackendJupyter {
		return BrowserCommand(runtime.GOOS)
	}
	return []string{"jupyter", "lab"}
}

// BrowserCommand returns the command opening "{url}" in the default browser on goos.
func BrowserCommand(goos string) []string {
	switch goos {
	case "darwin":
		return []string{"open", "{url}"}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", "{url}"}
	default:
		return []string{"xdg-open", "{url}"}
	}
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig enables Prometheus textfile export after each command.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Indent returns the JSON indent width for written notebooks.
func (o OutputConfig) Indent() int {
	if o.Compact {
		return 0
	}
	return 1
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads configuration from the specified file
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil && !errors.Is(err, errNoEnvFile) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, cerrors.ConfigNotFound(configPath)
	}

	// #nosec G304 - configPath is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// LoadOrDefault behaves like Load but returns defaults when configPath is the
// implicit default file and it does not exist.
func LoadOrDefault(configPath string) (*Config, error) {
	if configPath == DefaultPath {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			_ = loadEnvFile()
			return Default(), nil
		}
	}
	return Load(configPath)
}

// Parse decodes YAML configuration, expanding environment variables first.
func Parse(data []byte) (*Config, error) {
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := NormalizeConfig(&config); err != nil {
		return nil, err
	}
	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Version == "" {
		c.Version = "1"
	}
	if c.Backend == "" {
		c.Backend = BackendFS
	}
	if c.Jupyter.BaseURL == "" {
		c.Jupyter.BaseURL = "http://localhost:8888"
	}
	if c.Jupyter.Timeout <= 0 {
		c.Jupyter.Timeout = 30 * time.Second
	}
	if c.Jupyter.Retry.Backoff == "" {
		c.Jupyter.Retry.Backoff = RetryBackoffLinear
	}
	if c.Jupyter.Retry.Initial <= 0 {
		c.Jupyter.Retry.Initial = 500 * time.Millisecond
	}
	if c.Jupyter.Retry.Max <= 0 {
		c.Jupyter.Retry.Max = 5 * time.Second
	}
	if c.Jupyter.Retry.MaxRetries == nil {
		n := 2
		c.Jupyter.Retry.MaxRetries = &n
	}
	if c.Output.Suffix == "" {
		c.Output.Suffix = ".ipynb"
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
}

// Init creates a new configuration file with example content
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Jupyter.Token = "${JUPYTER_TOKEN}"
	example.Metrics.Textfile = ""

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
