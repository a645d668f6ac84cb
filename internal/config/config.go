package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Transcoder TranscoderConfig `yaml:"transcoder"`
	Download   DownloadConfig   `yaml:"download"`
	History    HistoryConfig    `yaml:"history"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT" default:"8311"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT" default:"0"`
}

// ExtractorConfig holds the extractor subprocess configuration.
// There are deliberately no default binary paths: where the extractor
// lives is an operator decision, not something this code guesses at.
type ExtractorConfig struct {
	// Python is the interpreter used to run the extractor.
	Python string `yaml:"python" envconfig:"EXTRACTOR_PYTHON"`
	// Binary is the extractor script/binary path.
	Binary string `yaml:"binary" envconfig:"EXTRACTOR_BINARY"`
	// Params are extra arguments passed on every invocation.
	Params []string `yaml:"params" envconfig:"EXTRACTOR_PARAMS"`
	// AuxPath is a directory prepended to PATH for the extractor
	// subprocess, so its plugins can find helper binaries.
	AuxPath string `yaml:"aux_path" envconfig:"EXTRACTOR_AUX_PATH"`
	// Timeout bounds metadata and property invocations.
	Timeout time.Duration `yaml:"timeout" envconfig:"EXTRACTOR_TIMEOUT" default:"2m"`
}

// TranscoderConfig holds the transcoder subprocess configuration.
type TranscoderConfig struct {
	Path      string `yaml:"path" envconfig:"TRANSCODER_PATH"`
	Verbosity string `yaml:"verbosity" envconfig:"TRANSCODER_VERBOSITY" default:"error"`
}

// DownloadConfig holds raw HTTP passthrough configuration.
type DownloadConfig struct {
	UserAgent     string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"`
	HeaderTimeout time.Duration `yaml:"header_timeout" envconfig:"DOWNLOAD_HEADER_TIMEOUT" default:"30s"`
}

// HistoryConfig holds request history storage configuration.
type HistoryConfig struct {
	// Path is the sqlite database file. Empty disables history.
	Path string `yaml:"path" envconfig:"HISTORY_PATH"`
	// Retention is how long entries are kept. Zero keeps them forever.
	Retention time.Duration `yaml:"retention" envconfig:"HISTORY_RETENTION"`
}

// Load reads configuration from file and environment variables.
// Environment variables override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Extractor.Binary == "" {
		return fmt.Errorf("EXTRACTOR_BINARY is required")
	}
	if c.Transcoder.Path == "" {
		return fmt.Errorf("TRANSCODER_PATH is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT out of range: %d", c.Server.Port)
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
