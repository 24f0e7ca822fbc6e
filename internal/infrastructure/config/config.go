package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/dataguard-br/privacy-engine/internal/domain/privacy"
)

type Config struct {
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Server  ServerConfig  `koanf:"server"`
	Privacy PrivacyConfig `koanf:"privacy"`
}

type ServerConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	RateLimit RateLimitConfig `koanf:"rate_limit"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `koanf:"requests_per_second"`
	BurstSize         int     `koanf:"burst_size"`
}

type PrivacyConfig struct {
	// DetectionOnlyMode forces every create operation into detection-only
	// behavior, process-wide.
	DetectionOnlyMode bool   `koanf:"detection_only_mode"`
	DefaultRetention  string `koanf:"default_retention"`
	CleanupEnabled    bool   `koanf:"cleanup_enabled"`
	CleanupSchedule   string `koanf:"cleanup_schedule"`
}

// Load layers configuration: struct defaults, then an optional YAML file,
// then PRIVACY_-prefixed environment variables (PRIVACY_SERVER__PORT → server.port).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Environment: "development",
		LogLevel:    "info",
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				RequestsPerSecond: 100,
				BurstSize:         200,
			},
		},
		Privacy: PrivacyConfig{
			DetectionOnlyMode: false,
			DefaultRetention:  string(privacy.RetentionMediumTerm),
			CleanupEnabled:    true,
			CleanupSchedule:   "0 3 * * *",
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider("PRIVACY_", ".", func(s string) string {
		key := strings.TrimPrefix(s, "PRIVACY_")
		return strings.ReplaceAll(strings.ToLower(key), "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if _, err := privacy.ParseRetentionPolicy(c.Privacy.DefaultRetention); err != nil {
		return fmt.Errorf("invalid default retention %q: %w", c.Privacy.DefaultRetention, err)
	}
	return nil
}

// DefaultRetentionPolicy returns the parsed default retention policy.
// Validate guarantees it parses.
func (c *Config) DefaultRetentionPolicy() privacy.RetentionPolicy {
	policy, _ := privacy.ParseRetentionPolicy(c.Privacy.DefaultRetention)
	return policy
}
