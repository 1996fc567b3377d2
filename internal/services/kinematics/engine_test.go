package kinematics

import (
	"math"
	"testing"
)

const eps = 1e-9

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAccelerationCentralDifference(t *testing.T) {
	// v = [0,2,4,6] at 10 Hz, dt=0.1: interior points (v[i+1]-v[i-1])/0.2 = 20
	v := []float64{0, 2, 4, 6}
	a := Acceleration(v, 10)

	if len(a) != len(v) {
		t.Fatalf("length mismatch: got %d want %d", len(a), len(v))
	}
	if !almost(a[1], 20) || !almost(a[2], 20) {
		t.Fatalf("interior points: got %v want 20, 20", a[1:3])
	}
	// one-sided boundaries: (2-0)/0.1 and (6-4)/0.1
	if !almost(a[0], 20) || !almost(a[3], 20) {
		t.Fatalf("boundary points: got a[0]=%v a[3]=%v want 20", a[0], a[3])
	}
}

func TestAccelerationDegenerateInputs(t *testing.T) {
	if got := Acceleration(nil, 10); len(got) != 0 {
		t.Fatalf("empty input: got len %d", len(got))
	}
	got := Acceleration([]float64{3.5}, 10)
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("single sample should yield zero derivative, got %v", got)
	}
}

func TestJerkLengthMatchesVelocity(t *testing.T) {
	v := []float64{1, 2, 1, 3, 2, 4}
	a := Acceleration(v, 10)
	j := Jerk(a, 10)
	if len(j) != len(v) {
		t.Fatalf("jerk length %d, velocity length %d", len(j), len(v))
	}
}

func TestPowerUsesAbsoluteAcceleration(t *testing.T) {
	v := []float64{5, 5}
	a := []float64{-2, 2}
	p := Power(v, a)
	if !almost(p[0], 10) || !almost(p[1], 10) {
		t.Fatalf("power should be v*|a|: got %v", p)
	}
}

func TestCumulativeDistanceTrapezoid(t *testing.T) {
	// constant 5 m/s over 11 samples at 10 Hz -> 1 s -> 5 m total
	v := make([]float64, 11)
	for i := range v {
		v[i] = 5
	}
	d := CumulativeDistance(v, 10)
	if d[0] != 0 {
		t.Fatalf("distance must start at 0, got %v", d[0])
	}
	if !almost(d[len(d)-1], 5) {
		t.Fatalf("total distance: got %v want 5", d[len(d)-1])
	}
}

func TestProfileAlignment(t *testing.T) {
	v := []float64{0, 1, 2, 3, 4, 5, 4, 3, 2, 1}
	p := Profile(v, 10)

	for name, arr := range map[string][]float64{
		"time":         p.Time,
		"velocity":     p.Velocity,
		"acceleration": p.Acceleration,
		"deceleration": p.Deceleration,
		"jerk":         p.Jerk,
		"power":        p.Power,
		"distance":     p.Distance,
	} {
		if len(arr) != len(v) {
			t.Fatalf("%s length %d, want %d", name, len(arr), len(v))
		}
	}
	if !almost(p.Time[1], 0.1) {
		t.Fatalf("time axis step: got %v want 0.1", p.Time[1])
	}
}

func TestProfileDoesNotAliasInput(t *testing.T) {
	v := []float64{1, 2, 3}
	p := Profile(v, 10)
	p.Velocity[0] = 99
	if v[0] != 1 {
		t.Fatal("profile must copy the velocity series, not alias it")
	}
}

func TestDecelerationMagnitudes(t *testing.T) {
	d := Deceleration([]float64{-1.5, 0, 2})
	want := []float64{1.5, 0, 0}
	for i := range want {
		if !almost(d[i], want[i]) {
			t.Fatalf("deceleration[%d]: got %v want %v", i, d[i], want[i])
		}
	}
}

func TestStats(t *testing.T) {
	s := Stats([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almost(s.Mean, 5) {
		t.Fatalf("mean: got %v want 5", s.Mean)
	}
	if !almost(s.Std, 2) {
		t.Fatalf("population std: got %v want 2", s.Std)
	}
	if s.Min != 2 || s.Max != 9 {
		t.Fatalf("min/max: got %v/%v", s.Min, s.Max)
	}
	if z := Stats(nil); z.Mean != 0 || z.Std != 0 {
		t.Fatalf("empty stats should be zero, got %+v", z)
	}
}
