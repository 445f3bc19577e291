package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/cnclabs/kgfeed/internal/logging"
	"github.com/cnclabs/kgfeed/pkg/sampler"
)

// Environment variables overriding file values
const (
	EnvTrain              = "KGFEED_TRAIN"
	EnvNegativeSampleSize = "KGFEED_NEGATIVE_SAMPLE_SIZE"
	EnvBatchSize          = "KGFEED_BATCH_SIZE"
	EnvSeed               = "KGFEED_SEED"
	EnvLogLevel           = "KGFEED_LOG_LEVEL"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the full feeder configuration
type Config struct {
	Data    DataConfig     `yaml:"data"`
	Feeder  FeederConfig   `yaml:"feeder"`
	Logging logging.Config `yaml:"logging"`
}

// DataConfig locates the training triples
type DataConfig struct {
	Train string `yaml:"train"`
}

// FeederConfig holds the sampling and batching parameters shared by the
// head-batch and tail-batch feeders
type FeederConfig struct {
	NegativeSampleSize int   `yaml:"negative_sample_size"`
	BatchSize          int   `yaml:"batch_size"`
	CountStart         int64 `yaml:"count_start"`
	MaxAttempts        int   `yaml:"max_attempts"`
	Workers            int   `yaml:"workers"`
	Shuffle            bool  `yaml:"shuffle"`
	Seed               int64 `yaml:"seed"` // 0 seeds from the clock
}

// Default returns the configuration used for any value a file leaves out
func Default() *Config {
	return &Config{
		Feeder: FeederConfig{
			NegativeSampleSize: 256,
			BatchSize:          1024,
			CountStart:         sampler.DefaultCountStart,
			MaxAttempts:        sampler.DefaultMaxAttempts,
			Workers:            1,
			Shuffle:            true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads a YAML config file on top of the defaults, then applies
// environment overrides. An empty path skips the file. A .env file in the
// working directory is read first when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvTrain); ok {
		c.Data.Train = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Logging.Level = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvNegativeSampleSize, &c.Feeder.NegativeSampleSize},
		{EnvBatchSize, &c.Feeder.BatchSize},
	}
	for _, e := range ints {
		v, ok := os.LookupEnv(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", e.key, v, ErrInvalidConfig)
		}
		*e.dst = n
	}

	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvSeed, v, ErrInvalidConfig)
		}
		c.Feeder.Seed = seed
	}
	return nil
}

// Validate rejects values the feeder cannot run with
func (c *Config) Validate() error {
	f := c.Feeder
	switch {
	case f.NegativeSampleSize <= 0:
		return fmt.Errorf("negative_sample_size must be positive, got %d: %w", f.NegativeSampleSize, ErrInvalidConfig)
	case f.BatchSize <= 0:
		return fmt.Errorf("batch_size must be positive, got %d: %w", f.BatchSize, ErrInvalidConfig)
	case f.CountStart <= 0:
		return fmt.Errorf("count_start must be positive, got %d: %w", f.CountStart, ErrInvalidConfig)
	case f.MaxAttempts <= 0:
		return fmt.Errorf("max_attempts must be positive, got %d: %w", f.MaxAttempts, ErrInvalidConfig)
	case f.Workers <= 0:
		return fmt.Errorf("workers must be positive, got %d: %w", f.Workers, ErrInvalidConfig)
	}
	return nil
}
