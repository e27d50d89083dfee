package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is read when CONFIG_PATH is unset.
const DefaultPath = "./config.yaml"

// Load reads configuration from CONFIG_PATH, or DefaultPath when unset,
// and the environment. Priority: ENV > YAML > env-default tags.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit || path == "" {
		return LoadFrom(DefaultPath, false)
	}
	return LoadFrom(path, true)
}

// LoadFrom reads configuration from path and the environment. A missing
// file is an error only when required is set; otherwise the environment
// and defaults are used alone.
func LoadFrom(path string, required bool) (*Config, error) {
	var cfg Config

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case required || !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, statErr)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Usage writes the recognised environment variables and their defaults.
func Usage(w io.Writer) {
	var cfg Config
	header := "Environment variables (override " + DefaultPath + " or CONFIG_PATH):"
	cleanenv.FUsage(w, &cfg, &header)()
}
