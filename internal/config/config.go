package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/cloo-solutions/kbdocs/internal/domain"
	"github.com/kelseyhightower/envconfig"
)

const (
	envPrefix = "RAGFLOW"

	DefaultAPIURL     = "http://localhost:9380"
	DefaultConfigFile = "ragflow_config.json"
)

// Source records where a resolved value came from.
type Source string

const (
	SourceFlag       Source = "flag"
	SourceConfigFile Source = "config_file"
	SourceEnv        Source = "env"
	SourceDefault    Source = "default"
	SourceNone       Source = "none"
)

// Env holds the RAGFLOW_* environment variables.
type Env struct {
	APIURL    string `envconfig:"API_URL"`
	APIKey    string `envconfig:"API_KEY"`
	SentryDSN string `envconfig:"SENTRY_DSN"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"warn"`
}

// FileConfig is the JSON config file layout.
type FileConfig struct {
	APIURL string `json:"api_url"`
	APIKey string `json:"api_key"`
}

// Options are the explicit inputs to Resolve, normally taken from flags.
type Options struct {
	APIURL     string
	APIKey     string
	ConfigFile string
	// Out receives progress and warning lines. Nil discards them.
	Out io.Writer
}

// Config is the resolved, immutable client configuration.
type Config struct {
	APIURL    string
	APIKey    string
	SentryDSN string
	LogLevel  string

	URLSource Source
	KeySource Source
}

// LoadEnv reads the RAGFLOW_* environment variables.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &env, nil
}

// LoadFile reads and parses a JSON config file.
// Returns nil config (not error) if the file doesn't exist.
func LoadFile(path string) (*FileConfig, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// Resolve builds the configuration with cascade: flag → config file → env → default.
// Each field is resolved independently. A missing API key is a configuration error.
func Resolve(opts Options) (*Config, error) {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	cfg := &Config{URLSource: SourceNone, KeySource: SourceNone}

	// Priority 1: flags
	if opts.APIURL != "" {
		cfg.APIURL, cfg.URLSource = opts.APIURL, SourceFlag
	}
	if opts.APIKey != "" {
		cfg.APIKey, cfg.KeySource = opts.APIKey, SourceFlag
	}

	// Priority 2: config file. A broken file is reported and skipped.
	fileCfg, err := LoadFile(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(out, "Warning: %v\n", err)
	} else if fileCfg != nil {
		if cfg.APIURL == "" && fileCfg.APIURL != "" {
			cfg.APIURL, cfg.URLSource = fileCfg.APIURL, SourceConfigFile
		}
		if cfg.APIKey == "" && fileCfg.APIKey != "" {
			cfg.APIKey, cfg.KeySource = fileCfg.APIKey, SourceConfigFile
		}
		fmt.Fprintf(out, "Loaded config file: %s\n", opts.ConfigFile)
	}

	// Priority 3: environment
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	if cfg.APIURL == "" && env.APIURL != "" {
		cfg.APIURL, cfg.URLSource = env.APIURL, SourceEnv
	}
	if cfg.APIKey == "" && env.APIKey != "" {
		cfg.APIKey, cfg.KeySource = env.APIKey, SourceEnv
	}
	cfg.SentryDSN = env.SentryDSN
	cfg.LogLevel = env.LogLevel

	// Priority 4: default (URL only)
	if cfg.APIURL == "" {
		cfg.APIURL, cfg.URLSource = DefaultAPIURL, SourceDefault
		fmt.Fprintf(out, "Warning: no API URL set, using default: %s\n", DefaultAPIURL)
	}

	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError(fmt.Sprintf(
			"API key not set; use one of:\n  1. the api_key field in %s\n  2. the --api-key flag\n  3. the %s_API_KEY environment variable",
			configFileLabel(opts.ConfigFile), envPrefix))
	}

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	return cfg, nil
}

func configFileLabel(path string) string {
	if path == "" {
		return DefaultConfigFile
	}
	return path
}
