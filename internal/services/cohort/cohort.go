// Package cohort aggregates WCS output across the players of a batch.
package cohort

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"WCSPull/internal/domain/models"
)

// outlierZ is the |z| above which a player's mean distance is flagged.
const outlierZ = 2.0

// Analyze groups a batch's reports by player and summarises the WCS
// distance for one (epoch, threshold, method) key. Reports that skipped
// the requested combination are ignored; an empty selection is an error.
func Analyze(batchID string, reports []*models.Report, epochMinutes float64, label string, method models.Method) (*models.CohortReport, error) {
	byPlayer := make(map[string][]float64)
	for _, rep := range reports {
		if rep == nil {
			continue
		}
		res, ok := rep.Lookup(method, epochMinutes, label)
		if !ok || !res.Found {
			continue
		}
		player := rep.Player
		if player == "" {
			player = rep.Source
		}
		byPlayer[player] = append(byPlayer[player], res.Distance)
	}
	if len(byPlayer) == 0 {
		return nil, fmt.Errorf("cohort: no reports carry (%gmin, %q, %s)", epochMinutes, label, method)
	}

	players := make([]models.PlayerAggregate, 0, len(byPlayer))
	means := make([]float64, 0, len(byPlayer))
	for name, distances := range byPlayer {
		agg := models.PlayerAggregate{
			Player:       name,
			Sessions:     len(distances),
			MeanDistance: stat.Mean(distances, nil),
			MaxDistance:  maxOf(distances),
		}
		if len(distances) > 1 {
			agg.StdDistance = stat.StdDev(distances, nil)
		}
		players = append(players, agg)
		means = append(means, agg.MeanDistance)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].Player < players[j].Player })

	cohortMean := stat.Mean(means, nil)
	var cohortStd float64
	if len(means) > 1 {
		cohortStd = stat.StdDev(means, nil)
	}
	for i := range players {
		if cohortStd > 0 {
			players[i].ZScore = (players[i].MeanDistance - cohortMean) / cohortStd
		}
		players[i].Outlier = players[i].ZScore > outlierZ || players[i].ZScore < -outlierZ
	}

	return &models.CohortReport{
		BatchID:      batchID,
		EpochMinutes: epochMinutes,
		Threshold:    label,
		Method:       method,
		Players:      players,
		CohortMean:   cohortMean,
		CohortStd:    cohortStd,
		GeneratedAt:  time.Now(),
	}, nil
}

func maxOf(xs []float64) float64 {
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}
