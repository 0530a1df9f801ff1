package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// APIConfig points the client at the remote task store.
type APIConfig struct {
	// BaseURL is the API root, e.g. http://localhost:8000/api.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// UserID scopes every task and sprint request.
	UserID int64 `mapstructure:"user_id" yaml:"user_id"`

	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`

	// PollIntervalSec is how often the open page reloads from the
	// server. Zero disables background refresh.
	PollIntervalSec int `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`

	SearchDebounceMS int `mapstructure:"search_debounce_ms" yaml:"search_debounce_ms"`
	ReportPageSize   int `mapstructure:"report_page_size" yaml:"report_page_size"`
}

// ServerConfig configures the bundled REST backend.
type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`

	// Driver is "sqlite" or "mysql".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is a file path for sqlite or a go-sql-driver DSN for mysql.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// envPrefix namespaces environment overrides (BRAINMINT_API_BASE_URL).
const envPrefix = "BRAINMINT"

// ConfigDir returns ~/.config/brainmint.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "brainmint")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/brainmint/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// DefaultAppConfig returns the configuration used when no file exists.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL:    "http://localhost:8000/api",
			TimeoutSec: 30,
			MaxRetries: 3,
		},
		Display: DisplayConfig{
			Theme:            "default",
			PollIntervalSec:  120,
			SearchDebounceMS: 300,
			ReportPageSize:   8,
		},
		Server: ServerConfig{
			Addr:   ":8000",
			Driver: "sqlite",
			DSN:    filepath.Join(ConfigDir(), "brainmint.db"),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// setDefaults mirrors DefaultAppConfig into v so that missing keys and
// environment-only values resolve.
func setDefaults(v *viper.Viper) {
	d := DefaultAppConfig()
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.user_id", d.API.UserID)
	v.SetDefault("api.timeout_sec", d.API.TimeoutSec)
	v.SetDefault("api.max_retries", d.API.MaxRetries)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.poll_interval_sec", d.Display.PollIntervalSec)
	v.SetDefault("display.search_debounce_ms", d.Display.SearchDebounceMS)
	v.SetDefault("display.report_page_size", d.Display.ReportPageSize)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.driver", d.Server.Driver)
	v.SetDefault("server.dsn", d.Server.DSN)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults (plus environment overrides) are
// returned.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values that would break the client or server.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url must not be empty")
	}
	if c.API.TimeoutSec <= 0 {
		c.API.TimeoutSec = 30
	}
	if c.API.MaxRetries < 0 {
		c.API.MaxRetries = 0
	}
	if c.Display.PollIntervalSec < 0 {
		c.Display.PollIntervalSec = 0
	}
	if c.Display.SearchDebounceMS <= 0 {
		c.Display.SearchDebounceMS = 300
	}
	if c.Display.ReportPageSize <= 0 {
		c.Display.ReportPageSize = 8
	}
	switch c.Server.Driver {
	case "sqlite", "mysql":
	default:
		return fmt.Errorf("server.driver must be sqlite or mysql, got %q", c.Server.Driver)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("display", cfg.Display)
	v.Set("server", cfg.Server)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
