package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
)

// Config holds the osgrid command settings, populated from environment
// variables and then overridden by flags.
type Config struct {
	Grid            string
	DefinitionsFile string
	Workers         int
	ChunkSize       int
	GridRefDigits   int
	LogLevel        string
	LogFormat       string
	MetricsTextfile string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	workers, err := envInt("OSGRID_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	chunkSize, err := envInt("OSGRID_CHUNK_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	digits, err := envInt("OSGRID_GRIDREF_DIGITS", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Grid:            envOrDefault("OSGRID_GRID", "osgb36"),
		DefinitionsFile: os.Getenv("OSGRID_DEFINITIONS"),
		Workers:         workers,
		ChunkSize:       chunkSize,
		GridRefDigits:   digits,
		LogLevel:        envOrDefault("OSGRID_LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("OSGRID_LOG_FORMAT", "text"),
		MetricsTextfile: os.Getenv("OSGRID_METRICS_TEXTFILE"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that flags may have changed after Load.
func (c *Config) Validate() error {
	if c.Grid == "" {
		return errors.New("OSGRID_GRID is required")
	}
	if c.Workers <= 0 {
		return errors.New("OSGRID_WORKERS must be positive")
	}
	if c.ChunkSize <= 0 {
		return errors.New("OSGRID_CHUNK_SIZE must be positive")
	}
	if c.GridRefDigits < 0 || c.GridRefDigits > 10 || c.GridRefDigits%2 != 0 {
		return errors.New("OSGRID_GRIDREF_DIGITS must be 0, 2, 4, 6, 8 or 10")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return errors.New("OSGRID_LOG_FORMAT must be json or text")
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}
