package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config selects the level and format of a logger
type Config struct {
	Level         string `yaml:"level"`  // panic, fatal, error, warn, info, debug, trace
	Format        string `yaml:"format"` // text or json
	DisableColors bool   `yaml:"disable_colors"`
}

// DefaultConfig logs text at info level
func DefaultConfig() Config {
	return Config{Level: "info", Format: "text"}
}

// NewLogger builds a logger writing to stderr
func NewLogger(cfg Config) (*logrus.Logger, error) {
	return NewLoggerTo(cfg, os.Stderr)
}

// NewLoggerTo builds a logger writing to out
func NewLoggerTo(cfg Config, out io.Writer) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(lvl)

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			DisableColors: cfg.DisableColors,
		})
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	return logger, nil
}
