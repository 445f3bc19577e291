package feeder

import "github.com/cnclabs/kgfeed/pkg/sampler"

// BatchSource is a finite sequence of batches addressed by index
type BatchSource interface {
	Len() int
	Batch(i int) (*sampler.Batch, error)
}

// Restarter is implemented by sources that prepare a new pass, e.g. by reshuffling
type Restarter interface {
	Restart()
}

// Cycle turns a finite BatchSource into an endless one by wrapping around to
// batch 0 after the last batch, restarting the source when it supports it.
type Cycle struct {
	src  BatchSource
	next int
}

// NewCycle creates a cycle over src
func NewCycle(src BatchSource) (*Cycle, error) {
	if src.Len() == 0 {
		return nil, ErrEmptySource
	}
	return &Cycle{src: src}, nil
}

// Next returns the next batch. A failed batch is not skipped: the following
// call tries the same index again.
func (c *Cycle) Next() (*sampler.Batch, error) {
	if c.next >= c.src.Len() {
		c.next = 0
		if r, ok := c.src.(Restarter); ok {
			r.Restart()
		}
	}

	b, err := c.src.Batch(c.next)
	if err != nil {
		return nil, err
	}
	c.next++
	return b, nil
}
