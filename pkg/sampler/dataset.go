package sampler

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxAttempts bounds consecutive rejected negative draws for one item
	DefaultMaxAttempts = 1000

	// A candidate needs at least this many elements left after filtering to be kept
	minCandidateLen = 4
)

// Config holds the construction parameters of a Dataset
type Config struct {
	NumEntities        int64 // entity cardinality as known by the caller
	NumRelations       int64 // relations are drawn from [0, NumRelations)
	NegativeSampleSize int   // exact length of every negative sample
	Mode               Mode

	CountStart  int64      // initial frequency count (default: 4)
	MaxAttempts int        // consecutive rejected draws before giving up (default: 1000)
	Rand        *rand.Rand // generator used by Get (default: time-seeded)
	Logger      logrus.FieldLogger
}

// Dataset serves positive facts paired with filtered negative samples.
// All indexes are built once in New and never mutated afterwards.
type Dataset struct {
	triples []Triple

	numEntities        int64
	derivedEntities    int64
	numRelations       int64
	negativeSampleSize int
	mode               Mode
	maxAttempts        int

	count    map[Pair]int64
	trueHead map[RelTail][]int64
	trueTail map[HeadRel][]int64
	trueAttr map[int64][]float64

	rng *rand.Rand
}

// Positive is the true fact of a sample
type Positive struct {
	Head     int64
	Relation int64
	Tail     int64
	Attr     []float64
}

// Sample is one item of a Dataset
type Sample struct {
	Positive Positive
	Negative []float64 // concatenated [h, r, t, attr(h)...] candidates, ids surviving the filter only
	Weight   float64
	Mode     Mode
}

// New builds the frequency counts and the true head/tail/attribute indexes.
// The mode is not checked here; Get reports an unsupported mode.
func New(triples []Triple, cfg Config) (*Dataset, error) {
	if len(triples) == 0 {
		return nil, ErrEmptyTriples
	}
	if cfg.NumRelations <= 0 {
		return nil, fmt.Errorf("number of relations must be positive, got %d", cfg.NumRelations)
	}
	if cfg.NegativeSampleSize < 0 {
		return nil, fmt.Errorf("negative sample size must not be negative, got %d", cfg.NegativeSampleSize)
	}
	if cfg.CountStart < 0 {
		return nil, fmt.Errorf("count start must not be negative, got %d", cfg.CountStart)
	}

	start := cfg.CountStart
	if start == 0 {
		start = DefaultCountStart
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	d := &Dataset{
		triples:            triples,
		numEntities:        cfg.NumEntities,
		numRelations:       cfg.NumRelations,
		negativeSampleSize: cfg.NegativeSampleSize,
		mode:               cfg.Mode,
		maxAttempts:        maxAttempts,
		rng:                rng,
	}
	d.count = CountFrequency(triples, start)
	d.trueHead, d.trueTail = TrueHeadAndTail(triples)
	d.trueAttr, d.derivedEntities = TrueAttr(triples)

	entry := logger.WithFields(logrus.Fields{
		"mode":             d.mode,
		"triples":          len(triples),
		"entities":         d.numEntities,
		"derived_entities": d.derivedEntities,
		"relations":        d.numRelations,
		"true_heads":       len(d.trueHead),
		"true_tails":       len(d.trueTail),
	})
	if d.derivedEntities != d.numEntities {
		entry.Warn("attribute index size differs from entity count; negatives are drawn from the attribute index")
	} else {
		entry.Debug("dataset built")
	}

	return d, nil
}

// Len returns the number of triples
func (d *Dataset) Len() int {
	return len(d.triples)
}

// Get samples item idx with the dataset's own generator
func (d *Dataset) Get(idx int) (Sample, error) {
	return d.Sample(idx, d.rng)
}

// Sample samples item idx with the given generator.
// Callers sampling from several goroutines must give each one its own rng.
func (d *Dataset) Sample(idx int, rng *rand.Rand) (Sample, error) {
	if idx < 0 || idx >= len(d.triples) {
		return Sample{}, fmt.Errorf("index %d, length %d: %w", idx, len(d.triples), ErrIndexOutOfRange)
	}
	t := d.triples[idx]

	var trueSet []int64
	switch d.mode {
	case HeadBatch:
		trueSet = d.trueHead[RelTail{Relation: t.Relation, Tail: t.Tail}]
	case TailBatch:
		trueSet = d.trueTail[HeadRel{Head: t.Head, Relation: t.Relation}]
	default:
		return Sample{}, fmt.Errorf("training batch mode %s not supported: %w", d.mode, ErrUnsupportedMode)
	}

	negative, err := d.negatives(trueSet, rng)
	if err != nil {
		return Sample{}, fmt.Errorf("item %d: %w", idx, err)
	}

	return Sample{
		Positive: Positive{Head: t.Head, Relation: t.Relation, Tail: t.Tail, Attr: t.Attr},
		Negative: negative,
		Weight:   d.SubsamplingWeight(t),
		Mode:     d.mode,
	}, nil
}

// negatives draws random (head, relation, tail) candidates until exactly
// negativeSampleSize elements are collected
func (d *Dataset) negatives(trueSet []int64, rng *rand.Rand) ([]float64, error) {
	negative := make([]float64, 0, d.negativeSampleSize+minCandidateLen)
	rejected := 0

	for len(negative) < d.negativeSampleSize {
		head := rng.Int63n(d.derivedEntities)
		relation := rng.Int63n(d.numRelations)
		tail := rng.Int63n(d.derivedEntities)

		attr, ok := d.trueAttr[head]
		if !ok {
			return nil, fmt.Errorf("entity %d: %w", head, ErrMissingAttribute)
		}

		// Only the id slots are filtered, the attributes always stay
		mark := len(negative)
		for _, id := range [3]int64{head, relation, tail} {
			if !contains(trueSet, id) {
				negative = append(negative, float64(id))
			}
		}
		negative = append(negative, attr...)

		if len(negative)-mark < minCandidateLen {
			negative = negative[:mark]
			rejected++
			if rejected >= d.maxAttempts {
				return nil, fmt.Errorf("%d consecutive draws filtered out: %w", rejected, ErrSamplingExhausted)
			}
			continue
		}
		rejected = 0
	}

	return negative[:d.negativeSampleSize], nil
}

// SubsamplingWeight returns sqrt(1 / (count(head, relation) + count(tail, -relation-1)))
func (d *Dataset) SubsamplingWeight(t Triple) float64 {
	freq := d.count[Pair{Entity: t.Head, Relation: t.Relation}] +
		d.count[Pair{Entity: t.Tail, Relation: -t.Relation - 1}]
	return math.Sqrt(1 / float64(freq))
}

// Mode returns the corruption mode of the dataset
func (d *Dataset) Mode() Mode {
	return d.mode
}

// NumEntities returns the entity cardinality given at construction
func (d *Dataset) NumEntities() int64 {
	return d.numEntities
}

// DerivedEntities returns the size of the attribute index.
// Negative heads and tails are drawn from [0, DerivedEntities).
func (d *Dataset) DerivedEntities() int64 {
	return d.derivedEntities
}

// NumRelations returns the relation cardinality
func (d *Dataset) NumRelations() int64 {
	return d.numRelations
}

// Count returns the frequency count of a key, 0 if never seen
func (d *Dataset) Count(p Pair) int64 {
	return d.count[p]
}

// TrueHead returns the sorted heads known for (relation, tail)
func (d *Dataset) TrueHead(relation, tail int64) []int64 {
	return d.trueHead[RelTail{Relation: relation, Tail: tail}]
}

// TrueTail returns the sorted tails known for (head, relation)
func (d *Dataset) TrueTail(head, relation int64) []int64 {
	return d.trueTail[HeadRel{Head: head, Relation: relation}]
}

// Attr returns the attribute vector stored for an entity
func (d *Dataset) Attr(entity int64) ([]float64, bool) {
	attr, ok := d.trueAttr[entity]
	return attr, ok
}

// Triple returns the triple at idx
func (d *Dataset) Triple(idx int) Triple {
	return d.triples[idx]
}
