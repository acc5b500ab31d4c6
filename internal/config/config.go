package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/thenoetrevino/nutriboard/internal/config/colors"
)

// Store backends
const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// ErrInvalidStore is returned when the configured store backend is unknown
var ErrInvalidStore = errors.New("store must be sqlite or postgres")

// Config represents the application configuration
type Config struct {
	Store       string `yaml:"store"`
	DBPath      string `yaml:"db_path"`      // SQLite file; empty = ~/.nutriboard/board.db
	DatabaseURL string `yaml:"database_url"` // PostgreSQL DSN
	SocketPath  string `yaml:"socket_path"`
	LogLevel    string `yaml:"log_level"`

	// RepairInterval is how often the daemon runs a repair pass (0 = never)
	RepairInterval time.Duration `yaml:"repair_interval"`
	// EventDebounce is the client-side batching window for board events
	EventDebounce time.Duration `yaml:"event_debounce"`

	ColorScheme colors.ColorScheme `yaml:"theme"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Store:         StoreSQLite,
		LogLevel:      "info",
		EventDebounce: 100 * time.Millisecond,
		ColorScheme:   DefaultColorScheme(),
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. Environment variables
// 2. .env (dotenv), found by walking up from the working directory
// 3. $XDG_CONFIG_HOME/nutriboard/config.yaml
// 4. Defaults
func Load() (*Config, error) {
	if envPath := findDotEnv(); envPath != "" {
		// existing environment variables win over the file
		_ = godotenv.Load(envPath)
	}

	cfg := Default()
	cfg.ColorScheme = colors.ColorScheme{}

	configPath, err := ConfigPath()
	if err == nil {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	loadThemeFile(cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides values with NUTRIBOARD_* environment variables
func (c *Config) applyEnv() error {
	if v := os.Getenv("NUTRIBOARD_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("NUTRIBOARD_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := getEnvOrFile("NUTRIBOARD_DATABASE_URL", "NUTRIBOARD_DATABASE_URL_FILE"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("NUTRIBOARD_SOCKET"); v != "" {
		c.SocketPath = v
	}
	if v := os.Getenv("NUTRIBOARD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NUTRIBOARD_REPAIR_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NUTRIBOARD_REPAIR_INTERVAL: %w", err)
		}
		c.RepairInterval = d
	}
	if v := os.Getenv("NUTRIBOARD_EVENT_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid NUTRIBOARD_EVENT_DEBOUNCE: %w", err)
		}
		c.EventDebounce = d
	}
	return nil
}

// Validate checks values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Store {
	case StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for the postgres store")
		}
	default:
		return fmt.Errorf("%w, got %q", ErrInvalidStore, c.Store)
	}
	if c.RepairInterval < 0 {
		return errors.New("repair_interval cannot be negative")
	}
	return nil
}

// SlogLevel converts LogLevel to a slog level (unknown values mean info)
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Socket returns the daemon socket path, defaulting to ~/.nutriboard/nutriboard.sock
func (c *Config) Socket() (string, error) {
	if c.SocketPath != "" {
		return c.SocketPath, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".nutriboard", "nutriboard.sock"), nil
}

// loadThemeFile merges the theme from NUTRIBOARD_THEME_FILE over the configured one
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("NUTRIBOARD_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		slog.Debug("theme file not readable", "path", themeFile, "error", err)
		return
	}

	var themeConfig struct {
		Theme colors.ColorScheme `yaml:"theme"`
	}

	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.ColorScheme.MergeFrom(themeConfig.Theme)
	}
}

// Save saves the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// ConfigPath returns the path to the config file
func ConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "nutriboard", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "nutriboard", "config.yaml"), nil
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() {
	if c.Store == "" {
		c.Store = StoreSQLite
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.EventDebounce <= 0 {
		c.EventDebounce = 100 * time.Millisecond
	}
	c.ColorScheme.ApplyDefaults()
}

// getEnvOrFile gets an environment variable value, or reads it from a file
// if the _FILE variant is set
func getEnvOrFile(envVar, fileVar string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}

	if filePath := os.Getenv(fileVar); filePath != "" {
		data, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(data))
		}
	}

	return ""
}

// findDotEnv searches for .env starting from cwd and walking up parent
// directories, stopping at the user's home directory.
func findDotEnv() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	homeDir, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, ".env")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		if dir == homeDir {
			return ""
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
