package cohort

import (
	"math"
	"testing"

	"WCSPull/internal/domain/models"
)

func report(player string, distance float64) *models.Report {
	return &models.Report{
		Source: player + ".csv",
		Player: player,
		Results: []models.EpochResult{
			{
				EpochMinutes: 1,
				Threshold:    "Default",
				Method:       models.MethodRolling,
				WCS:          models.WCSResult{Found: true, Distance: distance},
			},
		},
	}
}

func TestAnalyzeGroupsByPlayer(t *testing.T) {
	reports := []*models.Report{
		report("A", 100),
		report("A", 120),
		report("B", 90),
	}
	c, err := Analyze("b1", reports, 1, "Default", models.MethodRolling)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(c.Players) != 2 {
		t.Fatalf("got %d players, want 2", len(c.Players))
	}
	// sorted by name
	a := c.Players[0]
	if a.Player != "A" || a.Sessions != 2 {
		t.Fatalf("unexpected first aggregate: %+v", a)
	}
	if math.Abs(a.MeanDistance-110) > 1e-9 {
		t.Fatalf("player A mean: got %v want 110", a.MeanDistance)
	}
	if a.MaxDistance != 120 {
		t.Fatalf("player A max: got %v want 120", a.MaxDistance)
	}
}

func TestAnalyzeFlagsOutliers(t *testing.T) {
	reports := []*models.Report{
		report("A", 100), report("B", 101), report("C", 99),
		report("D", 100), report("E", 100), report("F", 100),
		report("G", 250), // far above the rest
	}
	c, err := Analyze("b1", reports, 1, "Default", models.MethodRolling)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	var flagged []string
	for _, p := range c.Players {
		if p.Outlier {
			flagged = append(flagged, p.Player)
		}
	}
	if len(flagged) != 1 || flagged[0] != "G" {
		t.Fatalf("outliers: got %v want [G]", flagged)
	}
}

func TestAnalyzeMissingCombination(t *testing.T) {
	if _, err := Analyze("b1", []*models.Report{report("A", 10)}, 5, "Default", models.MethodRolling); err == nil {
		t.Fatal("expected error when no report carries the combination")
	}
}

func TestAnalyzeFallsBackToSourceWhenPlayerUnknown(t *testing.T) {
	r := report("", 42)
	c, err := Analyze("b1", []*models.Report{r}, 1, "Default", models.MethodRolling)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if c.Players[0].Player != ".csv" {
		t.Fatalf("expected source fallback, got %q", c.Players[0].Player)
	}
}
