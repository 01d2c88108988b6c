// Package config loads settings from defaults, an optional YAML file, a .env
// file and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	NBBinary          string
	QueryTimeout      time.Duration
	DetailConcurrency int
	TagConcurrency    int

	Port            string
	RefreshInterval time.Duration
	TagCacheTTL     time.Duration

	LogFile  string
	LogLevel string
}

// fileConfig is the YAML layout. Durations are strings such as "30s".
type fileConfig struct {
	NB struct {
		Binary            string `yaml:"binary"`
		QueryTimeout      string `yaml:"query_timeout"`
		DetailConcurrency *int   `yaml:"detail_concurrency"`
		TagConcurrency    *int   `yaml:"tag_concurrency"`
	} `yaml:"nb"`
	Server struct {
		Port            string `yaml:"port"`
		RefreshInterval string `yaml:"refresh_interval"`
		TagCacheTTL     string `yaml:"tag_cache_ttl"`
	} `yaml:"server"`
	Logging struct {
		File  string `yaml:"file"`
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

func Default() Config {
	return Config{
		NBBinary:          "nb",
		QueryTimeout:      30 * time.Second,
		DetailConcurrency: 8,
		TagConcurrency:    1,
		Port:              "8991",
		RefreshInterval:   0,
		TagCacheTTL:       5 * time.Minute,
		LogLevel:          "info",
	}
}

// Load builds a Config. path may be empty; a missing .env file is ignored.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	setString(&c.NBBinary, fc.NB.Binary)
	setString(&c.Port, fc.Server.Port)
	setString(&c.LogFile, fc.Logging.File)
	setString(&c.LogLevel, fc.Logging.Level)
	if fc.NB.DetailConcurrency != nil {
		c.DetailConcurrency = *fc.NB.DetailConcurrency
	}
	if fc.NB.TagConcurrency != nil {
		c.TagConcurrency = *fc.NB.TagConcurrency
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"nb.query_timeout", fc.NB.QueryTimeout, &c.QueryTimeout},
		{"server.refresh_interval", fc.Server.RefreshInterval, &c.RefreshInterval},
		{"server.tag_cache_ttl", fc.Server.TagCacheTTL, &c.TagCacheTTL},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.key, d.raw); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.NBBinary = envOrDefault("NB_BINARY", c.NBBinary)
	c.Port = envOrDefault("PORT", c.Port)
	c.LogFile = envOrDefault("LOG_FILE", c.LogFile)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)

	ints := []struct {
		key string
		dst *int
	}{
		{"DETAIL_CONCURRENCY", &c.DetailConcurrency},
		{"TAG_CONCURRENCY", &c.TagConcurrency},
	}
	for _, i := range ints {
		v := os.Getenv(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.key, err)
		}
		*i.dst = n
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"QUERY_TIMEOUT", &c.QueryTimeout},
		{"REFRESH_INTERVAL", &c.RefreshInterval},
		{"TAG_CACHE_TTL", &c.TagCacheTTL},
	}
	for _, d := range durations {
		if err := setDuration(d.dst, d.key, os.Getenv(d.key)); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.NBBinary == "" {
		errs = append(errs, errors.New("nb binary must not be empty"))
	}
	if c.QueryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("query timeout must be positive, got %s", c.QueryTimeout))
	}
	if c.RefreshInterval < 0 {
		errs = append(errs, fmt.Errorf("refresh interval must not be negative, got %s", c.RefreshInterval))
	}
	if c.TagCacheTTL < 0 {
		errs = append(errs, fmt.Errorf("tag cache ttl must not be negative, got %s", c.TagCacheTTL))
	}
	return errors.Join(errs...)
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
