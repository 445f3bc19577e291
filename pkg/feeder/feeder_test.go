package feeder

import (
	"errors"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cnclabs/kgfeed/internal/logging/logtest"
	"github.com/cnclabs/kgfeed/pkg/sampler"
)

// fakeSource hands out batches whose single weight encodes the batch index
type fakeSource struct {
	n        int
	mode     sampler.Mode
	restarts int
	failAt   int
}

func (f *fakeSource) Len() int { return f.n }

func (f *fakeSource) Batch(i int) (*sampler.Batch, error) {
	if i == f.failAt {
		f.failAt = -1
		return nil, errors.New("boom")
	}
	return sampler.Collate([]sampler.Sample{{Weight: float64(i), Mode: f.mode}})
}

func (f *fakeSource) Restart() { f.restarts++ }

func newFake(n int, mode sampler.Mode) *fakeSource {
	return &fakeSource{n: n, mode: mode, failAt: -1}
}

func TestCycle_WrapsAround(t *testing.T) {
	src := newFake(3, sampler.TailBatch)
	c, err := NewCycle(src)
	require.NoError(t, err)

	var got []float64
	for i := 0; i < 8; i++ {
		b, err := c.Next()
		require.NoError(t, err)
		got = append(got, b.Weights.AtVec(0))
	}
	assert.Equal(t, []float64{0, 1, 2, 0, 1, 2, 0, 1}, got)
	assert.Equal(t, 2, src.restarts)
}

func TestCycle_RetriesFailedBatch(t *testing.T) {
	src := newFake(3, sampler.TailBatch)
	src.failAt = 1
	c, err := NewCycle(src)
	require.NoError(t, err)

	b, err := c.Next()
	require.NoError(t, err)
	assert.Equal(t, 0.0, b.Weights.AtVec(0))

	_, err = c.Next()
	require.Error(t, err)

	b, err = c.Next()
	require.NoError(t, err)
	assert.Equal(t, 1.0, b.Weights.AtVec(0))
}

func TestCycle_EmptySource(t *testing.T) {
	_, err := NewCycle(newFake(0, sampler.TailBatch))
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestBidirectionalIterator_Alternates(t *testing.T) {
	head := newFake(2, sampler.HeadBatch)
	tail := newFake(3, sampler.TailBatch)
	it, err := NewBidirectionalIterator(head, tail)
	require.NoError(t, err)

	b, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, sampler.TailBatch, b.Mode)
	assert.Equal(t, 1, it.Step())

	b, err = it.Next()
	require.NoError(t, err)
	assert.Equal(t, sampler.HeadBatch, b.Mode)
	assert.Equal(t, 2, it.Step())

	var headIdx, tailIdx []float64
	for i := 3; i <= 20; i++ {
		b, err := it.Next()
		require.NoError(t, err)
		if i%2 == 0 {
			require.Equal(t, sampler.HeadBatch, b.Mode, "step %d", i)
			headIdx = append(headIdx, b.Weights.AtVec(0))
		} else {
			require.Equal(t, sampler.TailBatch, b.Mode, "step %d", i)
			tailIdx = append(tailIdx, b.Weights.AtVec(0))
		}
	}
	assert.Equal(t, []float64{1, 0, 1, 0, 1, 0, 1, 0, 1}, headIdx)
	assert.Equal(t, []float64{1, 2, 0, 1, 2, 0, 1, 2, 0}, tailIdx)
}

func TestBidirectionalIterator_EmptySource(t *testing.T) {
	_, err := NewBidirectionalIterator(newFake(0, sampler.HeadBatch), newFake(1, sampler.TailBatch))
	assert.ErrorIs(t, err, ErrEmptySource)
}

func uniqueTriples(n int) []sampler.Triple {
	triples := make([]sampler.Triple, n)
	for i := range triples {
		triples[i] = sampler.Triple{
			Head:     int64(i),
			Relation: int64(i % 2),
			Tail:     int64((i + 1) % n),
			Attr:     []float64{float64(i)},
		}
	}
	return triples
}

func newDataset(t *testing.T, n int, mode sampler.Mode) *sampler.Dataset {
	t.Helper()
	d, err := sampler.New(uniqueTriples(n), sampler.Config{
		NumEntities:        int64(n),
		NumRelations:       2,
		NegativeSampleSize: 8,
		Mode:               mode,
		Rand:               rand.New(rand.NewSource(3)),
		Logger:             logtest.New(t),
	})
	require.NoError(t, err)
	return d
}

func passHeads(t *testing.T, l *Loader) []int64 {
	t.Helper()
	var heads []int64
	for i := 0; i < l.Len(); i++ {
		b, err := l.Batch(i)
		require.NoError(t, err)
		for _, ids := range b.PositiveIDs {
			heads = append(heads, ids[0])
		}
	}
	return heads
}

func TestLoader_CoversEveryItem(t *testing.T) {
	d := newDataset(t, 10, sampler.TailBatch)
	l, err := NewLoader(d, LoaderConfig{
		BatchSize: 4,
		Shuffle:   true,
		Workers:   3,
		Rand:      rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())

	last, err := l.Batch(2)
	require.NoError(t, err)
	assert.Equal(t, 2, last.Size())

	heads := passHeads(t, l)
	slices.Sort(heads)
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, heads)
}

func TestLoader_NoShuffleKeepsOrder(t *testing.T) {
	d := newDataset(t, 6, sampler.HeadBatch)
	l, err := NewLoader(d, LoaderConfig{BatchSize: 4})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5}, passHeads(t, l))
	l.Restart()
	assert.Equal(t, []int64{0, 1, 2, 3, 4, 5}, passHeads(t, l))
	assert.Equal(t, 1, l.Epoch())
}

func TestLoader_RestartReshuffles(t *testing.T) {
	d := newDataset(t, 50, sampler.TailBatch)
	l, err := NewLoader(d, LoaderConfig{
		BatchSize: 50,
		Shuffle:   true,
		Rand:      rand.New(rand.NewSource(11)),
		Logger:    logtest.New(t),
	})
	require.NoError(t, err)

	first := passHeads(t, l)
	l.Restart()
	second := passHeads(t, l)

	assert.NotEqual(t, first, second)
	slices.Sort(first)
	slices.Sort(second)
	assert.Equal(t, first, second)
}

func TestLoader_Reproducible(t *testing.T) {
	build := func() *Loader {
		l, err := NewLoader(newDataset(t, 12, sampler.TailBatch), LoaderConfig{
			BatchSize: 5,
			Shuffle:   true,
			Workers:   2,
			Rand:      rand.New(rand.NewSource(42)),
		})
		require.NoError(t, err)
		return l
	}
	a, b := build(), build()

	for i := 0; i < a.Len(); i++ {
		ba, err := a.Batch(i)
		require.NoError(t, err)
		bb, err := b.Batch(i)
		require.NoError(t, err)
		assert.Equal(t, ba.PositiveIDs, bb.PositiveIDs)
		assert.Equal(t, ba.Negative.RawMatrix().Data, bb.Negative.RawMatrix().Data)
	}
}

func TestLoader_PropagatesSamplingErrors(t *testing.T) {
	d := newDataset(t, 4, sampler.Mode("invalid-batch"))
	l, err := NewLoader(d, LoaderConfig{BatchSize: 2, Workers: 2})
	require.NoError(t, err)

	_, err = l.Batch(0)
	assert.ErrorIs(t, err, sampler.ErrUnsupportedMode)

	_, err = l.Batch(5)
	assert.ErrorIs(t, err, sampler.ErrIndexOutOfRange)
}

func TestLoader_InvalidConfig(t *testing.T) {
	d := newDataset(t, 4, sampler.TailBatch)
	_, err := NewLoader(d, LoaderConfig{BatchSize: 0})
	assert.Error(t, err)
}

func TestBidirectionalIterator_WithLoaders(t *testing.T) {
	headLoader, err := NewLoader(newDataset(t, 10, sampler.HeadBatch), LoaderConfig{
		BatchSize: 3,
		Shuffle:   true,
		Rand:      rand.New(rand.NewSource(5)),
		Logger:    logtest.New(t),
	})
	require.NoError(t, err)
	tailLoader, err := NewLoader(newDataset(t, 10, sampler.TailBatch), LoaderConfig{
		BatchSize: 3,
		Shuffle:   true,
		Rand:      rand.New(rand.NewSource(6)),
		Logger:    logtest.New(t),
	})
	require.NoError(t, err)

	it, err := NewBidirectionalIterator(headLoader, tailLoader)
	require.NoError(t, err)

	for step := 1; step <= 30; step++ {
		b, err := it.Next()
		require.NoError(t, err)
		if step%2 == 0 {
			assert.Equal(t, sampler.HeadBatch, b.Mode)
		} else {
			assert.Equal(t, sampler.TailBatch, b.Mode)
		}
		_, cols := b.Negative.Dims()
		assert.Equal(t, 8, cols)
	}
	// 15 batches per side over 4 batches per pass
	assert.Equal(t, 3, headLoader.Epoch())
	assert.Equal(t, 3, tailLoader.Epoch())
}
