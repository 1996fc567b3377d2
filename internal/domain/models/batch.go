package models

import "time"

// BatchStatus is the lifecycle state of a batch run.
type BatchStatus string

const (
	BatchPending  BatchStatus = "pending"
	BatchRunning  BatchStatus = "running"
	BatchFinished BatchStatus = "finished"
)

// BatchJob tracks a multi-file analysis run. Per-file failures land in
// Errors keyed by source path; successful reports in Reports. A failed
// file never aborts its siblings.
type BatchJob struct {
	ID         string            `json:"id"`
	Status     BatchStatus       `json:"status"`
	Files      []string          `json:"files"`
	Completed  int               `json:"completed"`
	Reports    []*Report         `json:"reports,omitempty"`
	Errors     map[string]string `json:"errors,omitempty"`
	Params     Params            `json:"params"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at,omitempty"`
}

// FileTask is one unit of batch work: a single export to ingest and
// analyse under the batch's parameters.
type FileTask struct {
	BatchID string `json:"batch_id"`
	Path    string `json:"path"`
	Format  string `json:"format,omitempty"`
	Params  Params `json:"params"`
}

// PlayerAggregate is one player's cohort summary for a single
// (epoch, threshold, method) key across a batch.
type PlayerAggregate struct {
	Player       string  `json:"player"`
	Sessions     int     `json:"sessions"`
	MeanDistance float64 `json:"mean_distance_m"`
	StdDistance  float64 `json:"std_distance_m"`
	MaxDistance  float64 `json:"max_distance_m"`
	ZScore       float64 `json:"z_score"`
	Outlier      bool    `json:"outlier"`
}

// CohortReport aggregates WCS output across the players of one batch.
type CohortReport struct {
	BatchID      string            `json:"batch_id"`
	EpochMinutes float64           `json:"epoch_minutes"`
	Threshold    string            `json:"threshold"`
	Method       Method            `json:"method"`
	Players      []PlayerAggregate `json:"players"`
	CohortMean   float64           `json:"cohort_mean_m"`
	CohortStd    float64           `json:"cohort_std_m"`
	GeneratedAt  time.Time         `json:"generated_at"`
}
