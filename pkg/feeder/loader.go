package feeder

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/cnclabs/kgfeed/pkg/sampler"
)

var ErrEmptySource = errors.New("batch source has no batches")

// Dataset is what a Loader samples items from
type Dataset interface {
	Len() int
	Sample(idx int, rng *rand.Rand) (sampler.Sample, error)
}

// LoaderConfig holds the batching parameters of a Loader
type LoaderConfig struct {
	BatchSize int
	Shuffle   bool
	Workers   int        // goroutines sampling one batch (default: 1)
	Rand      *rand.Rand // drives shuffling and seeds the workers (default: time-seeded)
	Logger    logrus.FieldLogger
}

// Loader splits a Dataset into batches. It is a finite, restartable batch
// source: one pass over Batch(0..Len()-1) visits every item once, and
// Restart reshuffles the item order for the next pass.
type Loader struct {
	ds        Dataset
	batchSize int
	shuffle   bool
	order     []int
	epoch     int

	rng     *rand.Rand
	workers []*rand.Rand
	logger  logrus.FieldLogger
}

// NewLoader creates a loader over ds
func NewLoader(ds Dataset, cfg LoaderConfig) (*Loader, error) {
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)
	}
	if ds.Len() == 0 {
		return nil, ErrEmptySource
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	l := &Loader{
		ds:        ds,
		batchSize: cfg.BatchSize,
		shuffle:   cfg.Shuffle,
		order:     make([]int, ds.Len()),
		rng:       rng,
		workers:   make([]*rand.Rand, workers),
		logger:    logger,
	}
	for i := range l.order {
		l.order[i] = i
	}
	// Each worker owns a generator, *rand.Rand is not safe for concurrent use
	for w := range l.workers {
		l.workers[w] = rand.New(rand.NewSource(rng.Int63()))
	}
	l.reshuffle()

	return l, nil
}

// Len returns the number of batches in one pass; the last one may be short
func (l *Loader) Len() int {
	return (len(l.order) + l.batchSize - 1) / l.batchSize
}

// Epoch returns how many times the loader has been restarted
func (l *Loader) Epoch() int {
	return l.epoch
}

// Batch samples and collates batch i of the current pass
func (l *Loader) Batch(i int) (*sampler.Batch, error) {
	if i < 0 || i >= l.Len() {
		return nil, fmt.Errorf("batch %d of %d: %w", i, l.Len(), sampler.ErrIndexOutOfRange)
	}

	start := i * l.batchSize
	end := min(start+l.batchSize, len(l.order))
	indices := l.order[start:end]
	samples := make([]sampler.Sample, len(indices))

	var g errgroup.Group
	chunkSize := (len(indices) + len(l.workers) - 1) / len(l.workers)

	for w, rng := range l.workers {
		rng := rng
		chunkStart := w * chunkSize
		chunkEnd := min(chunkStart+chunkSize, len(indices))
		if chunkStart >= chunkEnd {
			break
		}

		g.Go(func() error {
			for j := chunkStart; j < chunkEnd; j++ {
				s, err := l.ds.Sample(indices[j], rng)
				if err != nil {
					return err
				}
				samples[j] = s
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch %d: %w", i, err)
	}

	return sampler.Collate(samples)
}

// Restart starts a new pass, reshuffling the item order when shuffling is on
func (l *Loader) Restart() {
	l.epoch++
	l.reshuffle()
	l.logger.WithFields(logrus.Fields{
		"epoch":   l.epoch,
		"batches": l.Len(),
	}).Debug("loader restarted")
}

func (l *Loader) reshuffle() {
	if !l.shuffle {
		return
	}
	l.rng.Shuffle(len(l.order), func(i, j int) {
		l.order[i], l.order[j] = l.order[j], l.order[i]
	})
}
