package models

// Method identifies a WCS search strategy.
type Method string

const (
	MethodRolling    Method = "rolling"
	MethodContiguous Method = "contiguous"
)

// WCSResult is the outcome of one worst-case-scenario search.
// When Found is false the epoch did not fit the series and every other
// field is zero; callers must check Found before reading the numbers.
type WCSResult struct {
	Found       bool    `json:"found"`
	Distance    float64 `json:"distance_m"`
	Duration    float64 `json:"duration_s"`
	StartIndex  int     `json:"start_index"`
	EndIndex    int     `json:"end_index"` // exclusive
	StartTime   float64 `json:"start_time_s"`
	EndTime     float64 `json:"end_time_s"`
	CenterTime  float64 `json:"center_time_s"`
	AvgVelocity float64 `json:"avg_velocity_ms"`
}

// EpochResult pairs one (epoch, threshold, method) combination with its
// search outcome.
type EpochResult struct {
	EpochMinutes float64   `json:"epoch_minutes"`
	Threshold    string    `json:"threshold"`
	Method       Method    `json:"method"`
	WCS          WCSResult `json:"wcs"`
}
