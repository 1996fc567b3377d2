// Package wcs finds the fixed-duration window of a velocity series that
// maximises accumulated distance, either over every start position
// (rolling) or over fixed non-overlapping bins (contiguous).
package wcs

import (
	"math"

	"WCSPull/internal/domain/models"
)

// Engine runs WCS searches. The zero value searches with earliest-wins
// tie breaking.
type Engine struct {
	tie models.TieBreak
}

// Option configures an Engine.
type Option func(*Engine)

// WithTieBreak selects which of several equal-distance rolling windows
// wins. Default is earliest.
func WithTieBreak(tb models.TieBreak) Option {
	return func(e *Engine) {
		if tb != "" {
			e.tie = tb
		}
	}
}

// NewEngine creates a search engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{tie: models.TieEarliest}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EpochSamples converts an epoch duration in minutes to a sample count
// at the given rate.
func EpochSamples(epochMinutes, rate float64) int {
	return int(math.Round(epochMinutes * 60 * rate))
}

// RollingWindows is the number of candidate windows a rolling search
// considers: N - epochSamples + 1, or 0 when the epoch does not fit.
func RollingWindows(n, epochSamples int) int {
	if epochSamples <= 0 || epochSamples > n {
		return 0
	}
	return n - epochSamples + 1
}

// ContiguousWindows is the number of complete non-overlapping windows:
// floor(N / epochSamples). Trailing remainder samples are discarded.
func ContiguousWindows(n, epochSamples int) int {
	if epochSamples <= 0 {
		return 0
	}
	return n / epochSamples
}

// Rolling scans every start index and returns the window with the
// maximal accumulated distance. The prefix-sum formulation keeps the
// scan O(N) without changing which window wins. Returns Found=false
// when the epoch does not fit the series.
func (e *Engine) Rolling(values []float64, epochMinutes, rate float64) models.WCSResult {
	n := len(values)
	es := EpochSamples(epochMinutes, rate)
	if es <= 0 || es > n {
		return models.WCSResult{}
	}

	dt := 1.0 / rate
	prefix := make([]float64, n+1)
	for i, v := range values {
		prefix[i+1] = prefix[i] + v
	}

	best := math.Inf(-1)
	bestStart := 0
	for start := 0; start+es <= n; start++ {
		d := (prefix[start+es] - prefix[start]) * dt
		if d > best || (e.tie == models.TieLatest && d == best) {
			best = d
			bestStart = start
		}
	}

	return e.result(best, bestStart, es, rate)
}

// Contiguous partitions the series into fixed windows starting at index
// 0 and returns the best complete window. Returns Found=false when not
// even one window fits.
func (e *Engine) Contiguous(values []float64, epochMinutes, rate float64) models.WCSResult {
	n := len(values)
	es := EpochSamples(epochMinutes, rate)
	windows := ContiguousWindows(n, es)
	if windows == 0 {
		return models.WCSResult{}
	}

	dt := 1.0 / rate
	best := math.Inf(-1)
	bestStart := 0
	for w := 0; w < windows; w++ {
		start := w * es
		sum := 0.0
		for _, v := range values[start : start+es] {
			sum += v
		}
		d := sum * dt
		if d > best || (e.tie == models.TieLatest && d == best) {
			best = d
			bestStart = start
		}
	}

	return e.result(best, bestStart, es, rate)
}

func (e *Engine) result(distance float64, start, epochSamples int, rate float64) models.WCSResult {
	end := start + epochSamples
	startTime := float64(start) / rate
	endTime := float64(end) / rate
	duration := float64(epochSamples) / rate

	return models.WCSResult{
		Found:       true,
		Distance:    distance,
		Duration:    duration,
		StartIndex:  start,
		EndIndex:    end,
		StartTime:   startTime,
		EndTime:     endTime,
		CenterTime:  (startTime + endTime) / 2,
		AvgVelocity: distance / duration,
	}
}
