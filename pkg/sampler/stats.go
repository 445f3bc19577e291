package sampler

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WeightSummary describes the subsampling weights over all triples of a dataset
type WeightSummary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Weights returns the subsampling weight of every triple, in triple order
func (d *Dataset) Weights() []float64 {
	w := make([]float64, len(d.triples))
	for i, t := range d.triples {
		w[i] = d.SubsamplingWeight(t)
	}
	return w
}

// WeightStats summarizes the subsampling weights of d
func WeightStats(d *Dataset) WeightSummary {
	w := d.Weights()
	if len(w) == 0 {
		return WeightSummary{}
	}
	mean, std := stat.MeanStdDev(w, nil)
	return WeightSummary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(w),
		Max:    floats.Max(w),
	}
}
