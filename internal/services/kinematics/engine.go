// Package kinematics derives acceleration, jerk, power and distance
// series from a uniformly sampled velocity trace.
package kinematics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"WCSPull/internal/domain/models"
)

// Acceleration differentiates velocity with a central difference on
// interior points and one-sided differences at the boundaries, so the
// output keeps the input length.
func Acceleration(velocity []float64, rate float64) []float64 {
	n := len(velocity)
	out := make([]float64, n)
	if n < 2 {
		return out
	}
	dt := 1.0 / rate
	out[0] = (velocity[1] - velocity[0]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (velocity[i+1] - velocity[i-1]) / (2 * dt)
	}
	out[n-1] = (velocity[n-1] - velocity[n-2]) / dt
	return out
}

// Jerk is the derivative of acceleration, computed the same way.
func Jerk(acceleration []float64, rate float64) []float64 {
	return Acceleration(acceleration, rate)
}

// Power is the instantaneous effort proxy v·|a|. Using the magnitude of
// acceleration keeps the series non-negative for braking phases too.
func Power(velocity, acceleration []float64) []float64 {
	n := len(velocity)
	out := make([]float64, n)
	for i := 0; i < n && i < len(acceleration); i++ {
		out[i] = velocity[i] * math.Abs(acceleration[i])
	}
	return out
}

// Deceleration extracts braking as positive magnitudes; accelerating
// samples map to zero.
func Deceleration(acceleration []float64) []float64 {
	out := make([]float64, len(acceleration))
	for i, a := range acceleration {
		if a < 0 {
			out[i] = -a
		}
	}
	return out
}

// CumulativeDistance integrates velocity with the trapezoidal rule.
// out[0] is always 0.
func CumulativeDistance(velocity []float64, rate float64) []float64 {
	n := len(velocity)
	out := make([]float64, n)
	if n == 0 {
		return out
	}
	dt := 1.0 / rate
	for i := 1; i < n; i++ {
		out[i] = out[i-1] + (velocity[i]+velocity[i-1])/2*dt
	}
	return out
}

// MovingAverage smooths with a centered window, zero-padded at the
// edges (matching a same-mode box convolution).
func MovingAverage(values []float64, window int) []float64 {
	n := len(values)
	if window <= 1 || n == 0 {
		out := make([]float64, n)
		copy(out, values)
		return out
	}
	out := make([]float64, n)
	half := window / 2
	for i := range values {
		sum := 0.0
		// center the window so that out[i] covers [i-half, i-half+window)
		for j := i - half; j < i-half+window; j++ {
			if j >= 0 && j < n {
				sum += values[j]
			}
		}
		out[i] = sum / float64(window)
	}
	return out
}

// smoothingWindow picks the adaptive smoothing width: a fifth of a
// second of samples, capped at 5, never below 1.
func smoothingWindow(n int) int {
	w := n / 10
	if w > 5 {
		w = 5
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Profile computes the full kinematic profile for one velocity series.
// Every output array has the same length as the input; an empty input
// yields empty arrays and a single sample yields zero derivatives.
func Profile(velocity []float64, rate float64) *models.KinematicProfile {
	n := len(velocity)
	accel := Acceleration(velocity, rate)
	w := smoothingWindow(n)

	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i) / rate
	}

	v := make([]float64, n)
	copy(v, velocity)

	return &models.KinematicProfile{
		Time:               t,
		Velocity:           v,
		VelocitySmooth:     MovingAverage(velocity, w),
		Acceleration:       accel,
		AccelerationSmooth: MovingAverage(accel, w),
		Deceleration:       Deceleration(accel),
		Jerk:               Jerk(accel, rate),
		Power:              Power(velocity, accel),
		Distance:           CumulativeDistance(velocity, rate),
	}
}

// Stats summarises one signal with gonum. Std is the population
// standard deviation. Empty input returns zeros.
func Stats(values []float64) models.SignalStats {
	if len(values) == 0 {
		return models.SignalStats{}
	}
	return models.SignalStats{
		Mean: stat.Mean(values, nil),
		Min:  floats.Min(values),
		Max:  floats.Max(values),
		Std:  math.Sqrt(stat.PopVariance(values, nil)),
	}
}
