package sampler

import "fmt"

// Mode selects which side of a fact is corrupted when drawing negatives
type Mode string

const (
	// HeadBatch corrupts the head while holding relation and tail fixed
	HeadBatch Mode = "head-batch"
	// TailBatch corrupts the tail while holding head and relation fixed
	TailBatch Mode = "tail-batch"
)

// ParseMode converts a mode string, rejecting anything but head-batch and tail-batch
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case HeadBatch, TailBatch:
		return m, nil
	default:
		return "", fmt.Errorf("training batch mode %s not supported: %w", s, ErrUnsupportedMode)
	}
}

func (m Mode) String() string {
	return string(m)
}
