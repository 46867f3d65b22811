package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "tada.yaml"

// Config holds all tada settings.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where the todo collection is persisted.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory, file, sqlite, mysql
	Path    string `yaml:"path"`    // sqlite location; file defaults to ./tada.json
	DSN     string `yaml:"dsn"`     // mysql only
}

// UIConfig tunes CLI output.
type UIConfig struct {
	Theme string `yaml:"theme"` // classic, neon, mono
	Group bool   `yaml:"group"` // list grouped by pending/done
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
			Path:    "tada.db",
		},
		UI: UIConfig{
			Theme: "classic",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
// Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TADA_STORAGE")); v != "" {
		c.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv("TADA_PATH")); v != "" {
		c.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv("TADA_DSN")); v != "" {
		c.Storage.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("TADA_THEME")); v != "" {
		c.UI.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv("TADA_LOG_LEVEL")); v != "" {
		c.Log.Level = v
	}
}

// Validate reports settings the CLI cannot act on.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendFile:
	case BackendSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage %q needs a path", c.Storage.Backend)
		}
	case BackendMySQL:
		if c.Storage.DSN == "" {
			return errors.New("storage \"mysql\" needs a dsn")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch strings.ToLower(c.UI.Theme) {
	case "", "classic", "neon", "mono":
	default:
		return fmt.Errorf("unknown theme %q", c.UI.Theme)
	}
	return nil
}
