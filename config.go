package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the process-wide settings the core consults: allocation
// ceilings, number formatting, string comparison and logging.
type Config struct {
	MaxVarCapacity  int           `yaml:"max_var_capacity"`
	MaxDerefBuffer  int           `yaml:"max_deref_buffer"`
	FloatFormat     string        `yaml:"float_format"`
	IntegerFormat   string        `yaml:"integer_format"`
	StringCaseSense bool          `yaml:"string_case_sense"`
	NoEnv           bool          `yaml:"no_env"`
	IdleReclaim     time.Duration `yaml:"idle_reclaim"`
	LogFile         string        `yaml:"log_file"`
	LogJSON         bool          `yaml:"log_json"`
	LogLevel        string        `yaml:"log_level"`
}

var errBadConfig = errors.New("invalid configuration")

func defaultConfig() *Config {
	return &Config{
		MaxVarCapacity: defaultMaxVarCapacity,
		MaxDerefBuffer: defaultMaxDerefBuffer,
		FloatFormat:    "%0.6f",
		IntegerFormat:  "d",
		IdleReclaim:    10 * time.Second,
		LogLevel:       "warn",
	}
}

// loadConfig reads a YAML file over the defaults. A missing path is not an
// error: the defaults are returned.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errBadConfig, path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.MaxVarCapacity <= maxAllocSimple {
		return fmt.Errorf("%w: max_var_capacity must exceed %d", errBadConfig, maxAllocSimple)
	}
	if c.MaxDerefBuffer < derefBufExpandIncrement {
		return fmt.Errorf("%w: max_deref_buffer must be at least %d", errBadConfig, derefBufExpandIncrement)
	}
	if !validFloatFormat(c.FloatFormat) {
		return fmt.Errorf("%w: float_format %q needs exactly one of the verbs f, e, g", errBadConfig, c.FloatFormat)
	}
	switch strings.ToLower(c.IntegerFormat) {
	case "d", "h":
		c.IntegerFormat = strings.ToLower(c.IntegerFormat)
	default:
		return fmt.Errorf("%w: integer_format must be d or h", errBadConfig)
	}
	if c.IdleReclaim < 0 {
		return fmt.Errorf("%w: idle_reclaim cannot be negative", errBadConfig)
	}
	if _, ok := logLevelFromString(c.LogLevel); !ok && c.LogLevel != "" {
		return fmt.Errorf("%w: unknown log_level %q", errBadConfig, c.LogLevel)
	}
	return nil
}

// validFloatFormat accepts printf formats with a single f, e or g verb
// and nothing that would consume a second argument.
func validFloatFormat(f string) bool {
	verbs := 0
	for i := 0; i < len(f); i++ {
		if f[i] != '%' {
			continue
		}
		i++
		if i < len(f) && f[i] == '%' {
			continue
		}
		for i < len(f) && strings.IndexByte("+-# 0123456789.", f[i]) >= 0 {
			i++
		}
		if i == len(f) {
			return false
		}
		switch f[i] {
		case 'f', 'e', 'g', 'E', 'G':
			verbs++
		default:
			return false
		}
	}
	return verbs == 1
}
