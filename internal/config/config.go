// Package config loads gateway settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvAPIKeyID       = "CDP_API_KEY_ID"
	EnvAPIKeySecret   = "CDP_API_KEY_SECRET"
	EnvFacilitatorURL = "FACILITATOR_URL"
	EnvUpstreamURL    = "UPSTREAM_URL"
	EnvListenAddr     = "LISTEN_ADDR"
	EnvLogLevel       = "LOG_LEVEL"

	DefaultListenAddr = ":4021"
)

// Config holds the gateway settings
type Config struct {
	APIKeyID       string
	APIKeySecret   string
	FacilitatorURL string
	UpstreamURL    string
	ListenAddr     string
	LogLevel       zapcore.Level
}

// Load reads .env files (missing files are ignored) and then the process
// environment. Variables already set in the environment win over .env values.
func Load(envFiles ...string) (*Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	cfg := &Config{
		APIKeyID:       os.Getenv(EnvAPIKeyID),
		APIKeySecret:   os.Getenv(EnvAPIKeySecret),
		FacilitatorURL: os.Getenv(EnvFacilitatorURL),
		UpstreamURL:    os.Getenv(EnvUpstreamURL),
		ListenAddr:     os.Getenv(EnvListenAddr),
		LogLevel:       zapcore.InfoLevel,
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}

	if level := strings.TrimSpace(os.Getenv(EnvLogLevel)); level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvLogLevel, err)
		}
		cfg.LogLevel = parsed
	}

	if cfg.FacilitatorURL != "" {
		if err := validateURL(cfg.FacilitatorURL); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvFacilitatorURL, err)
		}
	}

	return cfg, nil
}

// Upstream parses the upstream service URL. It is required by the gateway.
func (c *Config) Upstream() (*url.URL, error) {
	if c.UpstreamURL == "" {
		return nil, fmt.Errorf("%s is required", EnvUpstreamURL)
	}
	if err := validateURL(c.UpstreamURL); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvUpstreamURL, err)
	}
	return url.Parse(c.UpstreamURL)
}

// Logger builds a production logger at the configured level
func (c *Config) Logger() (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(c.LogLevel)
	return zapConfig.Build()
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}
