package sampler

import "errors"

var (
	ErrUnsupportedMode   = errors.New("unsupported batch mode")
	ErrSamplingExhausted = errors.New("negative sampling exhausted its attempts")
	ErrIndexOutOfRange   = errors.New("triple index out of range")
	ErrMissingAttribute  = errors.New("entity has no attribute vector")
	ErrEmptyTriples      = errors.New("no triples given")
	ErrEmptyBatch        = errors.New("cannot collate an empty batch")
	ErrRaggedBatch       = errors.New("samples in batch have different lengths")
)
