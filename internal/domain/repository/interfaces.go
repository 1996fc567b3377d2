package repository

import (
	"context"

	"WCSPull/internal/domain/models"
)

// Analyzer runs the full kinematics + thresholding + WCS pipeline for
// one session.
type Analyzer interface {
	Analyze(ctx context.Context, s *models.Session, p models.Params) (*models.Report, error)
}

// ReportSink persists finished reports (flat-file export layer).
type ReportSink interface {
	WriteReports(reports []*models.Report) (path string, err error)
}

// ProgressPublisher pushes batch progress events to subscribers.
type ProgressPublisher interface {
	Publish(event interface{})
}

// Metrics records operational counters for analyses.
type Metrics interface {
	RecordFileAnalyzed(format string)
	RecordError(kind string)
	RecordWCSDistance(method string, meters float64)
	RecordLatency(op string, seconds float64)
}
