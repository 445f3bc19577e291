package feeder

import (
	"fmt"

	"github.com/cnclabs/kgfeed/pkg/sampler"
)

// BidirectionalIterator alternates between a head-batch and a tail-batch
// source forever. Odd steps, including the first, come from the tail source.
type BidirectionalIterator struct {
	head *Cycle
	tail *Cycle
	step int
}

// NewBidirectionalIterator cycles over head and tail
func NewBidirectionalIterator(head, tail BatchSource) (*BidirectionalIterator, error) {
	hc, err := NewCycle(head)
	if err != nil {
		return nil, fmt.Errorf("head source: %w", err)
	}
	tc, err := NewCycle(tail)
	if err != nil {
		return nil, fmt.Errorf("tail source: %w", err)
	}
	return &BidirectionalIterator{head: hc, tail: tc}, nil
}

// Next advances the step counter and returns the batch for the new step
func (it *BidirectionalIterator) Next() (*sampler.Batch, error) {
	it.step++
	if it.step%2 == 0 {
		return it.head.Next()
	}
	return it.tail.Next()
}

// Step returns the number of Next calls so far
func (it *BidirectionalIterator) Step() int {
	return it.step
}
