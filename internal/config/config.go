package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/emilianohg/dutyroster/internal/models"
)

// HomeEnv overrides the base directory (~/.dutyroster) when set.
const HomeEnv = "DUTYROSTER_HOME"

type Config struct {
	DefaultDays  int                    `toml:"default_days"`
	ParallelDays bool                   `toml:"parallel_days"`
	Database     string                 `toml:"database"`
	Manager      models.ManagerSettings `toml:"manager"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultDays:  1,
		ParallelDays: false,
	}
}

func DutyrosterDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return expandPath(dir), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".dutyroster"), nil
}

func ConfigPath() (string, error) {
	dir, err := DutyrosterDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DatabasePath returns the configured database file, or the default under the base directory.
func (c *Config) DatabasePath() (string, error) {
	if c != nil && c.Database != "" {
		return c.Database, nil
	}
	return DatabasePath()
}

func DatabasePath() (string, error) {
	dir, err := DutyrosterDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "db", "dutyroster.sqlite"), nil
}

func ErrorLogPath() (string, error) {
	dir, err := DutyrosterDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "errors.log"), nil
}

func EnsureDirectories() error {
	dir, err := DutyrosterDir()
	if err != nil {
		return err
	}

	// Create main directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	// Create db subdirectory
	dbDir := filepath.Join(dir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return err
	}

	return nil
}

func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()

	// If config file doesn't exist, create it with defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := EnsureDirectories(); err != nil {
			return nil, err
		}
		if err := Save(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	if cfg.DefaultDays < 1 {
		cfg.DefaultDays = 1
	}
	cfg.Database = expandPath(cfg.Database)

	return cfg, nil
}

func Save(cfg *Config) error {
	configPath, err := ConfigPath()
	if err != nil {
		return err
	}

	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
