package analysis

import (
	"context"
	"math"
	"testing"

	"WCSPull/internal/domain/models"
)

func testSession(v []float64) *models.Session {
	return &models.Session{
		ID:           "t1",
		Source:       "test.csv",
		Player:       "P1",
		SamplingRate: 10,
		Velocity:     v,
	}
}

func defaultParams() models.Params {
	return models.Params{
		SamplingRate: 10,
		Epochs:       []float64{0.1},
		Thresholds: []models.ThresholdSpec{
			{Label: "Default", Signal: models.SignalVelocity, Min: 0, Max: 100},
			{Label: "High-speed", Signal: models.SignalVelocity, Min: 5, Max: 100},
		},
	}
}

func TestAnalyzeProducesAllCombinations(t *testing.T) {
	v := make([]float64, 120)
	for i := range v {
		v[i] = 5
	}
	rep, err := New().Analyze(context.Background(), testSession(v), defaultParams())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	// 1 epoch x 2 thresholds x 2 methods
	if len(rep.Results) != 4 {
		t.Fatalf("got %d results, want 4", len(rep.Results))
	}
	roll, ok := rep.Lookup(models.MethodRolling, 0.1, "Default")
	if !ok || !roll.Found {
		t.Fatal("missing rolling/Default result")
	}
	if math.Abs(roll.Distance-30) > 1e-9 {
		t.Fatalf("rolling distance: got %v want 30", roll.Distance)
	}
}

func TestOversizedEpochSkippedSiblingsProceed(t *testing.T) {
	v := make([]float64, 120) // 12 s of data
	for i := range v {
		v[i] = 3
	}
	p := defaultParams()
	p.Epochs = []float64{0.1, 5} // 5 min does not fit

	rep, err := New().Analyze(context.Background(), testSession(v), p)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	big, ok := rep.Lookup(models.MethodRolling, 5, "Default")
	if !ok {
		t.Fatal("oversized epoch must still be recorded")
	}
	if big.Found {
		t.Fatal("oversized epoch must report no result")
	}
	small, _ := rep.Lookup(models.MethodRolling, 0.1, "Default")
	if !small.Found {
		t.Fatal("sibling combination must still compute")
	}
}

func TestThresholdsMaskFromPristineOriginal(t *testing.T) {
	// A narrow threshold must not influence the wide threshold that is
	// evaluated after it: both must be applied to the original series.
	v := []float64{2, 2, 2, 2, 2, 2, 2, 2, 2, 2}
	p := models.Params{
		SamplingRate: 10,
		Epochs:       []float64{1.0 / 60.0}, // 10 samples
		Thresholds: []models.ThresholdSpec{
			{Label: "narrow", Min: 5, Max: 100},  // masks everything
			{Label: "wide", Min: 0, Max: 100},    // must still see the 2s
		},
	}
	rep, err := New().Analyze(context.Background(), testSession(v), p)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	narrow, _ := rep.Lookup(models.MethodRolling, 1.0/60.0, "narrow")
	if narrow.Distance != 0 {
		t.Fatalf("narrow threshold distance: got %v want 0", narrow.Distance)
	}
	wide, _ := rep.Lookup(models.MethodRolling, 1.0/60.0, "wide")
	if math.Abs(wide.Distance-2) > 1e-9 {
		t.Fatalf("wide threshold saw a pre-masked series: got %v want 2", wide.Distance)
	}
}

func TestAccelerationThreshold(t *testing.T) {
	// alternating velocity creates large |a| everywhere except the flat tail
	v := []float64{0, 4, 0, 4, 0, 4, 2, 2, 2, 2}
	p := models.Params{
		SamplingRate: 10,
		Epochs:       []float64{1.0 / 60.0},
		Thresholds: []models.ThresholdSpec{
			{Label: "accel", Signal: models.SignalAcceleration, Min: 10, Max: 1000},
		},
	}
	rep, err := New().Analyze(context.Background(), testSession(v), p)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	res, ok := rep.Lookup(models.MethodRolling, 1.0/60.0, "accel")
	if !ok || !res.Found {
		t.Fatal("missing acceleration-threshold result")
	}
	// the flat tail has |a| ~ 0 and must be excluded, so distance is
	// strictly below the unthresholded 1.8 m
	if res.Distance >= 1.8 {
		t.Fatalf("acceleration threshold had no effect: distance %v", res.Distance)
	}
}

func TestEmptySeriesFailsWholeAnalysis(t *testing.T) {
	if _, err := New().Analyze(context.Background(), testSession(nil), defaultParams()); err == nil {
		t.Fatal("expected error for empty series")
	}
}

func TestInvalidThresholdRejectedBeforeComputation(t *testing.T) {
	p := defaultParams()
	p.Thresholds = []models.ThresholdSpec{{Label: "bad", Min: 9, Max: 1}}
	if _, err := New().Analyze(context.Background(), testSession([]float64{1, 2, 3}), p); err == nil {
		t.Fatal("expected error for inverted threshold range")
	}
}

func TestNegativeVelocityIsHardFailure(t *testing.T) {
	if _, err := New().Analyze(context.Background(), testSession([]float64{1, -2, 3}), defaultParams()); err == nil {
		t.Fatal("expected error for negative velocity")
	}
}

func TestReportStatsAndTotals(t *testing.T) {
	v := make([]float64, 11)
	for i := range v {
		v[i] = 5
	}
	rep, err := New().Analyze(context.Background(), testSession(v), models.Params{
		SamplingRate: 10,
		Epochs:       []float64{1.0 / 60.0},
		Thresholds:   []models.ThresholdSpec{{Label: "Default", Min: 0, Max: 100}},
	})
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if math.Abs(rep.TotalDistance-5) > 1e-9 {
		t.Fatalf("total distance: got %v want 5", rep.TotalDistance)
	}
	if math.Abs(rep.VelocityStats.Mean-5) > 1e-9 {
		t.Fatalf("velocity mean: got %v want 5", rep.VelocityStats.Mean)
	}
	if rep.Profile != nil {
		t.Fatal("profile must be omitted unless requested")
	}
}
