package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "pagebuilder.yaml"

// Load reads, expands, defaults and validates the configuration at configPath.
func Load(configPath string) (*Config, error) {
	loadEnvFiles(filepath.Dir(configPath))

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ferrors.ConfigError("configuration file not found").
			WithCause(err).
			WithContext("path", configPath).
			UserAction().
			Build()
	}
	if err != nil {
		return nil, ferrors.FileSystemError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	baseDir, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	return Parse(data, baseDir)
}

// Parse decodes configuration bytes. Relative site paths resolve against baseDir.
func Parse(data []byte, baseDir string) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, ferrors.ConfigError("failed to parse config").
			WithCause(err).
			UserAction().
			Build()
	}

	if err := normalize(&cfg); err != nil {
		return nil, err
	}
	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	if !filepath.IsAbs(cfg.Site.Dir) {
		cfg.Site.Dir = filepath.Join(baseDir, cfg.Site.Dir)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// normalize case-folds enumerations. Unknown values are left for validation to report.
func normalize(cfg *Config) error {
	if raw := cfg.Build.OnPageError; raw != "" {
		if m := NormalizePageErrorMode(string(raw)); m != "" {
			cfg.Build.OnPageError = m
		}
	}
	if raw := cfg.Build.OnBrokenLinks; raw != "" {
		if m := NormalizeLinkMode(string(raw)); m != "" {
			cfg.Build.OnBrokenLinks = m
		}
	}
	if raw := cfg.Notify.Backoff; raw != "" {
		if m := NormalizeBackoffMode(string(raw)); m != "" {
			cfg.Notify.Backoff = m
		}
	}
	if cfg.Monitoring.Logging.Level != "" {
		cfg.Monitoring.Logging.Level = NormalizeLogLevel(string(cfg.Monitoring.Logging.Level))
	}
	if cfg.Monitoring.Logging.Format != "" {
		cfg.Monitoring.Logging.Format = NormalizeLogFormat(string(cfg.Monitoring.Logging.Format))
	}
	return nil
}

// loadEnvFiles loads .env and .env.local from dir. Variables already set in
// the environment win.
func loadEnvFiles(dir string) {
	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			slog.Warn("Failed to load env file", "path", path, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", path)
	}
}
