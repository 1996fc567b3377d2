// Package threshold zeroes samples whose control value falls outside an
// inclusion range. Masking always works from the pristine original and
// returns a fresh slice; inputs are never mutated.
package threshold

import (
	"fmt"
	"math"
)

// Range is an inclusive [Min, Max] inclusion band.
type Range struct {
	Min float64
	Max float64
}

// Validate rejects inverted ranges. Callers must do this before Apply;
// the masker itself assumes a well-formed range.
func (r Range) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("threshold range: min %g > max %g", r.Min, r.Max)
	}
	return nil
}

// Contains reports whether x lies inside the band.
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// Apply masks values against a control series: out[i] keeps values[i]
// when control[i] is inside the range, 0 otherwise. Masking is per
// sample with no window coupling. Length mismatch is a hard error.
func Apply(values, control []float64, r Range) ([]float64, error) {
	if len(values) != len(control) {
		return nil, fmt.Errorf("threshold: values length %d != control length %d", len(values), len(control))
	}
	out := make([]float64, len(values))
	for i, c := range control {
		if r.Contains(c) {
			out[i] = values[i]
		}
	}
	return out, nil
}

// ApplyVelocity masks a velocity series against itself.
func ApplyVelocity(velocity []float64, r Range) []float64 {
	out, _ := Apply(velocity, velocity, r)
	return out
}

// Abs returns the element-wise magnitudes, used as the control series
// when thresholding on acceleration.
func Abs(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Abs(v)
	}
	return out
}
