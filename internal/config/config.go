// Package config loads foodsheet configuration.
//
// Precedence, lowest first: built-in defaults, the YAML file, FOODSHEET_*
// environment variables, then command-line flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete application configuration.
type Config struct {
	Database  string          `yaml:"database"`
	Listen    string          `yaml:"listen"`
	LogLevel  string          `yaml:"log_level"`
	Session   SessionConfig   `yaml:"session"`
	Images    ImagesConfig    `yaml:"images"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SessionConfig selects the session backend.
type SessionConfig struct {
	Backend  string        `yaml:"backend"` // memory | redis
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl"`
}

// ImagesConfig selects the image host.
type ImagesConfig struct {
	Backend       string           `yaml:"backend"` // disk | cloudinary
	Dir           string           `yaml:"dir"`
	PublicBaseURL string           `yaml:"public_base_url"`
	Cloudinary    CloudinaryConfig `yaml:"cloudinary"`
}

// CloudinaryConfig holds the unsigned-upload settings.
type CloudinaryConfig struct {
	CloudName    string `yaml:"cloud_name"`
	UploadPreset string `yaml:"upload_preset"`
	Endpoint     string `yaml:"endpoint"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

// Backend names.
const (
	SessionMemory = "memory"
	SessionRedis  = "redis"

	ImagesDisk       = "disk"
	ImagesCloudinary = "cloudinary"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: "foodsheet.db",
		Listen:   ":8501",
		LogLevel: "info",
		Session: SessionConfig{
			Backend: SessionMemory,
			TTL:     12 * time.Hour,
		},
		Images: ImagesConfig{
			Backend:       ImagesDisk,
			Dir:           "images",
			PublicBaseURL: "http://localhost:8501/images",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "foodsheet",
		},
	}
}

// Load returns Default overlaid with the YAML file at path and then the
// process environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := cfg.Decode(f); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// Decode overlays YAML from r onto c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overlays FOODSHEET_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("FOODSHEET_DB"); ok && v != "" {
		c.Database = v
	}
	if v, ok := lookup("FOODSHEET_LISTEN"); ok && v != "" {
		c.Listen = v
	}
	if v, ok := lookup("FOODSHEET_REDIS_URL"); ok && v != "" {
		c.Session.RedisURL = v
		c.Session.Backend = SessionRedis
	}
	if v, ok := lookup("FOODSHEET_LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
}

// Validate reports every problem found, joined.
func (c Config) Validate() error {
	var errs []error

	if c.Listen == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	switch c.Session.Backend {
	case SessionMemory:
	case SessionRedis:
		if c.Session.RedisURL == "" {
			errs = append(errs, errors.New("session.redis_url is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session.backend %q", c.Session.Backend))
	}
	if c.Session.TTL < 0 {
		errs = append(errs, errors.New("session.ttl must not be negative"))
	}

	switch c.Images.Backend {
	case ImagesDisk:
		if c.Images.Dir == "" {
			errs = append(errs, errors.New("images.dir is required for the disk backend"))
		}
	case ImagesCloudinary:
		if c.Images.Cloudinary.CloudName == "" {
			errs = append(errs, errors.New("images.cloudinary.cloud_name is required"))
		}
		if c.Images.Cloudinary.UploadPreset == "" {
			errs = append(errs, errors.New("images.cloudinary.upload_preset is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown images.backend %q", c.Images.Backend))
	}

	return errors.Join(errs...)
}

// ParseLogLevel maps debug|info|warn|error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log_level %q", s)
}
