package sampler

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Batch is a collated list of samples of one mode
type Batch struct {
	PositiveIDs  [][3]int64    // (head, relation, tail) per row
	PositiveAttr *mat.Dense    // rows x attribute length, nil when facts carry no attributes
	Negative     *mat.Dense    // rows x negative sample size
	Weights      *mat.VecDense // subsampling weight per row
	Mode         Mode
}

// Size returns the number of rows in the batch
func (b *Batch) Size() int {
	return len(b.PositiveIDs)
}

// Collate stacks the positives and negatives of samples into matrices and
// concatenates their weights. The batch takes the mode of the first sample.
func Collate(samples []Sample) (*Batch, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBatch
	}

	rows := len(samples)
	attrLen := len(samples[0].Positive.Attr)
	negLen := len(samples[0].Negative)

	ids := make([][3]int64, rows)
	attrData := make([]float64, 0, rows*attrLen)
	negData := make([]float64, 0, rows*negLen)
	weights := make([]float64, rows)

	for i, s := range samples {
		if len(s.Positive.Attr) != attrLen {
			return nil, fmt.Errorf("positive attributes of row %d have length %d, want %d: %w",
				i, len(s.Positive.Attr), attrLen, ErrRaggedBatch)
		}
		if len(s.Negative) != negLen {
			return nil, fmt.Errorf("negative sample of row %d has length %d, want %d: %w",
				i, len(s.Negative), negLen, ErrRaggedBatch)
		}

		ids[i] = [3]int64{s.Positive.Head, s.Positive.Relation, s.Positive.Tail}
		attrData = append(attrData, s.Positive.Attr...)
		negData = append(negData, s.Negative...)
		weights[i] = s.Weight
	}

	b := &Batch{
		PositiveIDs: ids,
		Weights:     mat.NewVecDense(rows, weights),
		Mode:        samples[0].Mode,
	}
	// gonum refuses zero-sized matrices
	if attrLen > 0 {
		b.PositiveAttr = mat.NewDense(rows, attrLen, attrData)
	}
	if negLen > 0 {
		b.Negative = mat.NewDense(rows, negLen, negData)
	}

	return b, nil
}
