package wcs

import (
	"math"
	"math/rand"
	"testing"

	"WCSPull/internal/domain/models"
	"WCSPull/internal/services/threshold"
)

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func constantSeries(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestConstantVelocityBothMethodsAgree(t *testing.T) {
	// 5 m/s for 120 samples at 10 Hz, epoch 0.1 min = 60 samples:
	// distance = 5 * 60 * 0.1 = 30 m, earliest of the tied windows wins.
	v := constantSeries(5, 120)
	e := NewEngine()

	roll := e.Rolling(v, 0.1, 10)
	cont := e.Contiguous(v, 0.1, 10)

	if !roll.Found || !cont.Found {
		t.Fatal("expected results for both methods")
	}
	if !almost(roll.Distance, 30) || !almost(cont.Distance, 30) {
		t.Fatalf("distances: rolling %v contiguous %v, want 30", roll.Distance, cont.Distance)
	}
	if roll.StartIndex != 0 {
		t.Fatalf("tied maxima must resolve to the earliest window, got start %d", roll.StartIndex)
	}
	if !almost(roll.Duration, 6) {
		t.Fatalf("window duration: got %v want 6s", roll.Duration)
	}
	if !almost(roll.AvgVelocity, 5) {
		t.Fatalf("avg velocity: got %v want 5", roll.AvgVelocity)
	}
	if !almost(roll.CenterTime, 3) {
		t.Fatalf("center time: got %v want 3s", roll.CenterTime)
	}
}

func TestSpikeAlignment(t *testing.T) {
	// 10 m/s spike of 10 samples at offset 25 inside 100 zero samples,
	// epoch 1 s (10 samples at 10 Hz). Rolling finds the spike exactly;
	// contiguous bins start at 0,10,20,... so the spike straddles two bins.
	v := make([]float64, 100)
	for i := 25; i < 35; i++ {
		v[i] = 10
	}
	e := NewEngine()

	roll := e.Rolling(v, 1.0/60.0, 10)
	if !almost(roll.Distance, 10) {
		t.Fatalf("rolling distance: got %v want 10", roll.Distance)
	}
	if roll.StartIndex != 25 || roll.EndIndex != 35 {
		t.Fatalf("rolling window: got [%d,%d) want [25,35)", roll.StartIndex, roll.EndIndex)
	}

	cont := e.Contiguous(v, 1.0/60.0, 10)
	if cont.Distance >= roll.Distance {
		t.Fatalf("misaligned spike: contiguous %v should be below rolling %v", cont.Distance, roll.Distance)
	}
	if !almost(cont.Distance, 5) {
		t.Fatalf("contiguous distance: got %v want 5 (half the spike per bin)", cont.Distance)
	}
}

func TestRollingNeverBelowContiguous(t *testing.T) {
	// Contiguous windows are a subset of rolling candidates, so rolling
	// must always dominate. Check over random thresholded series.
	rng := rand.New(rand.NewSource(42))
	e := NewEngine()
	for trial := 0; trial < 50; trial++ {
		n := 200 + rng.Intn(400)
		v := make([]float64, n)
		for i := range v {
			v[i] = rng.Float64() * 9
		}
		masked := threshold.ApplyVelocity(v, threshold.Range{Min: 3, Max: 100})

		for _, epoch := range []float64{1.0 / 60, 0.1, 0.25} {
			roll := e.Rolling(masked, epoch, 10)
			cont := e.Contiguous(masked, epoch, 10)
			if !cont.Found {
				continue
			}
			if roll.Distance < cont.Distance-1e-9 {
				t.Fatalf("trial %d epoch %v: rolling %v < contiguous %v",
					trial, epoch, roll.Distance, cont.Distance)
			}
		}
	}
}

func TestZeroVelocityZeroDistance(t *testing.T) {
	v := make([]float64, 300)
	e := NewEngine()
	roll := e.Rolling(v, 0.1, 10)
	cont := e.Contiguous(v, 0.1, 10)
	if !roll.Found || roll.Distance != 0 {
		t.Fatalf("rolling on all-zero series: %+v", roll)
	}
	if !cont.Found || cont.Distance != 0 {
		t.Fatalf("contiguous on all-zero series: %+v", cont)
	}
}

func TestEpochLongerThanSeries(t *testing.T) {
	v := constantSeries(5, 30)
	e := NewEngine()
	if res := e.Rolling(v, 1, 10); res.Found {
		t.Fatalf("rolling should report no result for oversized epoch, got %+v", res)
	}
	if res := e.Contiguous(v, 1, 10); res.Found {
		t.Fatalf("contiguous should report no result for oversized epoch, got %+v", res)
	}
}

func TestWindowCounts(t *testing.T) {
	if got := RollingWindows(120, 60); got != 61 {
		t.Fatalf("rolling windows: got %d want 61", got)
	}
	if got := ContiguousWindows(120, 60); got != 2 {
		t.Fatalf("contiguous windows: got %d want 2", got)
	}
	if got := ContiguousWindows(119, 60); got != 1 {
		t.Fatalf("remainder samples must be discarded: got %d want 1", got)
	}
	if got := RollingWindows(30, 60); got != 0 {
		t.Fatalf("oversized epoch: got %d want 0", got)
	}
}

func TestEpochSamplesRounding(t *testing.T) {
	if got := EpochSamples(0.1, 10); got != 60 {
		t.Fatalf("0.1 min at 10 Hz: got %d want 60", got)
	}
	// 0.0125 min * 60 * 10 = 7.5 -> rounds to 8
	if got := EpochSamples(0.0125, 10); got != 8 {
		t.Fatalf("rounding: got %d want 8", got)
	}
}

func TestLatestTieBreak(t *testing.T) {
	v := constantSeries(2, 50)
	e := NewEngine(WithTieBreak(models.TieLatest))
	roll := e.Rolling(v, 1.0/60.0, 10) // 10-sample window, all tied
	if roll.StartIndex != 40 {
		t.Fatalf("latest tie break: got start %d want 40", roll.StartIndex)
	}
}

func TestRollingPicksStrictMaximum(t *testing.T) {
	// two peaks, the later one larger; earliest-wins must still pick it
	v := make([]float64, 100)
	for i := 10; i < 20; i++ {
		v[i] = 4
	}
	for i := 60; i < 70; i++ {
		v[i] = 6
	}
	roll := NewEngine().Rolling(v, 1.0/60.0, 10)
	if roll.StartIndex != 60 {
		t.Fatalf("got start %d want 60", roll.StartIndex)
	}
	if !almost(roll.Distance, 6) {
		t.Fatalf("got distance %v want 6", roll.Distance)
	}
}
