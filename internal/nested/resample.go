package nested

import (
	"fmt"
	"math/rand"
)

// ResampleEqual draws n equal-weight rows from a weighted sample set by
// systematic resampling. Every output row is one of the input rows; no
// values are interpolated or synthesized.
func ResampleEqual(samples [][]float64, weights []float64, n int, rnd *rand.Rand) ([][]float64, error) {
	if len(samples) != len(weights) {
		return nil, fmt.Errorf("resample: %d samples but %d weights", len(samples), len(weights))
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("resample: empty sample set")
	}
	if n <= 0 {
		n = len(samples)
	}

	total := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("resample: negative weight %v", w)
		}
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("resample: weights sum to zero")
	}

	// Systematic resampling: one uniform offset, n evenly spaced positions
	// walked against the cumulative weight.
	offset := rnd.Float64()
	out := make([][]float64, 0, n)
	cumulative := weights[0] / total
	j := 0
	for i := 0; i < n; i++ {
		position := (offset + float64(i)) / float64(n)
		for position > cumulative && j < len(weights)-1 {
			j++
			cumulative += weights[j] / total
		}
		out = append(out, cloneRow(samples[j]))
	}
	return out, nil
}
