package main

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cnclabs/kgfeed/internal/config"
	"github.com/cnclabs/kgfeed/internal/logging"
	"github.com/cnclabs/kgfeed/pkg/feeder"
	"github.com/cnclabs/kgfeed/pkg/knowledge"
	"github.com/cnclabs/kgfeed/pkg/sampler"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "kgfeed",
	Short: "kgfeed - negative-sampling feeder for knowledge graph embedding",
	Long: `kgfeed pairs every training triple with filtered negative samples and
subsampling weights, alternating between head-batch and tail-batch corruption.

Input format (triples):
	head relation tail [attr ...]
	Example: Barack_Obama born_in Hawaii 0.3`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.AddCommand(statsCmd, previewCmd)
}

// env is what every subcommand needs after startup
type env struct {
	cfg    *config.Config
	logger logrus.FieldLogger
	kg     *knowledge.KnowledgeGraph
	rng    *rand.Rand
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Data.Train == "" {
		return nil, errors.New("no training triples: set data.train or " + config.EnvTrain)
	}

	base, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger := base.WithField("run_id", uuid.NewString())

	seed := cfg.Feeder.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.WithFields(logrus.Fields{
		"negative_sample_size": cfg.Feeder.NegativeSampleSize,
		"batch_size":           cfg.Feeder.BatchSize,
		"workers":              cfg.Feeder.Workers,
		"seed":                 seed,
	}).Info("feeder setting")

	kg := knowledge.NewKnowledgeGraph(logger)
	start := time.Now()
	if err := kg.LoadTriples(cfg.Data.Train); err != nil {
		return nil, err
	}
	logger.WithField("seconds", time.Since(start).Seconds()).Info("triples loaded")

	return &env{cfg: cfg, logger: logger, kg: kg, rng: rand.New(rand.NewSource(seed))}, nil
}

func (e *env) dataset(mode sampler.Mode) (*sampler.Dataset, error) {
	d, err := e.kg.Dataset(sampler.Config{
		NegativeSampleSize: e.cfg.Feeder.NegativeSampleSize,
		Mode:               mode,
		CountStart:         e.cfg.Feeder.CountStart,
		MaxAttempts:        e.cfg.Feeder.MaxAttempts,
		Rand:               rand.New(rand.NewSource(e.rng.Int63())),
		Logger:             e.logger.WithField("mode", mode),
	})
	if err != nil {
		return nil, fmt.Errorf("%s dataset: %w", mode, err)
	}
	return d, nil
}

func (e *env) loader(mode sampler.Mode) (*feeder.Loader, error) {
	d, err := e.dataset(mode)
	if err != nil {
		return nil, err
	}
	return feeder.NewLoader(d, feeder.LoaderConfig{
		BatchSize: e.cfg.Feeder.BatchSize,
		Shuffle:   e.cfg.Feeder.Shuffle,
		Workers:   e.cfg.Feeder.Workers,
		Rand:      rand.New(rand.NewSource(e.rng.Int63())),
		Logger:    e.logger.WithField("mode", mode),
	})
}
