package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Backend  BackendConfig  `mapstructure:"backend"`
	Grid     GridConfig     `mapstructure:"grid"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// BackendConfig selects where contact imports are created.
type BackendConfig struct {
	Kind     string        `mapstructure:"kind"`
	BaseURL  string        `mapstructure:"base_url"`
	TokenEnv string        `mapstructure:"token_env"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Token reads the API token from the configured env var.
func (b BackendConfig) Token() string {
	if b.TokenEnv == "" {
		return ""
	}
	return os.Getenv(b.TokenEnv)
}

// GridConfig holds editor settings.
type GridConfig struct {
	Rows        int           `mapstructure:"rows"`
	Cols        int           `mapstructure:"cols"`
	DoubleClick time.Duration `mapstructure:"double_click"`
	CellWidth   int           `mapstructure:"cell_width"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

const (
	BackendLocal = "local"
	BackendHTTP  = "http"
)

// Path returns the config file location, honouring CONTACTIMPORT_CONFIG.
func Path() string {
	if p := os.Getenv("CONTACTIMPORT_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(os.Getenv("HOME"), ".config", "contactimport", "config.toml")
}

// Load reads configuration from the file at path, or Path() when path is
// empty, and from env. Env var overrides use prefix CONTACTIMPORT_.
func Load(path string) (Config, error) {
	if path == "" {
		path = Path()
	}
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "contactimport", "contactimport.db"))
	v.SetDefault("backend.kind", BackendLocal)
	v.SetDefault("backend.base_url", "http://localhost:8080")
	v.SetDefault("backend.token_env", "CONTACTIMPORT_API_TOKEN")
	v.SetDefault("backend.timeout", "15s")
	v.SetDefault("grid.rows", 10)
	v.SetDefault("grid.cols", 5)
	v.SetDefault("grid.double_click", "400ms")
	v.SetDefault("grid.cell_width", 14)
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "contactimport", "contactimport.log"))
	v.SetDefault("log.level", "info")

	v.SetConfigType("toml")
	v.SetConfigFile(path)

	v.SetEnvPrefix("CONTACTIMPORT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing file is fine, a broken one is not
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the app cannot run with.
func (c Config) Validate() error {
	switch c.Backend.Kind {
	case BackendLocal, BackendHTTP:
	default:
		return fmt.Errorf("config: backend.kind %q: want %q or %q", c.Backend.Kind, BackendLocal, BackendHTTP)
	}
	if c.Backend.Kind == BackendHTTP && c.Backend.BaseURL == "" {
		return fmt.Errorf("config: backend.base_url is required for the http backend")
	}
	if c.Grid.Rows < 1 || c.Grid.Cols < 1 {
		return fmt.Errorf("config: grid must be at least 1x1, got %dx%d", c.Grid.Rows, c.Grid.Cols)
	}
	return nil
}

// Save writes cfg to path, or Path() when path is empty, creating the
// directory if needed. Tokens are never written; only the name of the env
// var that holds one.
func Save(path string, cfg Config) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("backend.kind", cfg.Backend.Kind)
	v.Set("backend.base_url", cfg.Backend.BaseURL)
	v.Set("backend.token_env", cfg.Backend.TokenEnv)
	v.Set("backend.timeout", cfg.Backend.Timeout.String())
	v.Set("grid.rows", cfg.Grid.Rows)
	v.Set("grid.cols", cfg.Grid.Cols)
	v.Set("grid.double_click", cfg.Grid.DoubleClick.String())
	v.Set("grid.cell_width", cfg.Grid.CellWidth)
	v.Set("log.path", cfg.Log.Path)
	v.Set("log.level", cfg.Log.Level)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
