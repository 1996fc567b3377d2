package usecase

import (
	"context"
	"fmt"

	"WCSPull/internal/domain/models"
	"WCSPull/pkg/queue"
)

// AnalyzeTaskJob consumes batch file tasks from the message queue and
// routes them through the same pipeline the in-process workers use.
type AnalyzeTaskJob struct {
	batch *Batch
}

func NewAnalyzeTaskJob(batch *Batch) *AnalyzeTaskJob {
	return &AnalyzeTaskJob{batch: batch}
}

func (j *AnalyzeTaskJob) Name() string { return "batch_analyze_file" }

func (j *AnalyzeTaskJob) Type() string { return TaskMessageType }

func (j *AnalyzeTaskJob) Handle(ctx context.Context, payload interface{}) error {
	task, err := queue.ParsePayload[models.FileTask](payload)
	if err != nil {
		return fmt.Errorf("batch job: %w", err)
	}
	return j.batch.ProcessTask(ctx, task)
}

// ProcessTask pushes one task through the analysis pipeline.
func (b *Batch) ProcessTask(ctx context.Context, t *models.FileTask) error {
	return b.pipe.Process(ctx, t)
}
