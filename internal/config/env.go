package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvDisplay   = "FRAMEWM_DISPLAY"
	EnvLogLevel  = "FRAMEWM_LOG_LEVEL"
	EnvAnimation = "FRAMEWM_ANIMATION"
	EnvConfig    = "FRAMEWM_CONFIG"
)

// LoadEnv loads .env files into the process environment without overriding
// variables that are already set: ./.env first, then the .env next to the
// config file. Missing files are ignored.
func LoadEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), ".env"))
	}
	for _, path := range candidates {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

// rawFromEnv turns FRAMEWM_* variables into a config layer.
func rawFromEnv() (RawConfig, map[string]Source, error) {
	var raw RawConfig
	sources := map[string]Source{}

	if v, ok := os.LookupEnv(EnvDisplay); ok {
		raw.Display = &v
		sources["display"] = Source{Kind: SourceEnv, Name: EnvDisplay}
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && strings.TrimSpace(v) != "" {
		raw.LogLevel = &v
		sources["log_level"] = Source{Kind: SourceEnv, Name: EnvLogLevel}
	}
	if v, ok := os.LookupEnv(EnvAnimation); ok && strings.TrimSpace(v) != "" {
		enabled, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return RawConfig{}, nil, &ValidationError{
				Path:   "animation.enabled",
				Source: Source{Kind: SourceEnv, Name: EnvAnimation},
				Err:    fmt.Errorf("%s must be a boolean, got %q", EnvAnimation, v),
			}
		}
		raw.Animation = &RawAnimation{Enabled: &enabled}
		sources["animation.enabled"] = Source{Kind: SourceEnv, Name: EnvAnimation}
	}
	return raw, sources, nil
}

// PathFromEnv returns $FRAMEWM_CONFIG, or the default path.
func PathFromEnv() (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvConfig)); v != "" {
		return v, nil
	}
	return DefaultConfigPath()
}
