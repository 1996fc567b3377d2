package usecase

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"WCSPull/internal/domain/models"
	drepo "WCSPull/internal/domain/repository"
	"WCSPull/internal/export"
	mid "WCSPull/internal/middleware"
	"WCSPull/internal/progress"
	"WCSPull/pkg/logger"
	"WCSPull/pkg/queue"
)

// TaskMessageType is the queue message type for one batch file task.
const TaskMessageType = "wcspull.analyze_file"

var csvExtensions = map[string]bool{".csv": true, ".txt": true}

// Batch fans a multi-file run across a worker pool. Tasks flow through
// the analysis pipeline so validation, buffering and retry apply to
// every path (in-process workers and the Redis queue alike).
type Batch struct {
	analyze  *AnalyzeFile
	hub      *progress.Hub
	exporter *export.Writer
	metrics  drepo.Metrics
	log      *logger.Logger

	pipe    *mid.AnalysisPipeline
	queue   queue.QueueService // nil unless queue mode is enabled
	workers int
	tasks   chan *models.FileTask

	mu   sync.RWMutex
	jobs map[string]*models.BatchJob

	wg      sync.WaitGroup
	started bool
}

type BatchOption func(*Batch)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithQueue routes tasks through a message queue instead of the
// in-process channel. Queue consumers still call HandleTask.
func WithQueue(q queue.QueueService) BatchOption {
	return func(b *Batch) { b.queue = q }
}

func NewBatch(analyze *AnalyzeFile, hub *progress.Hub, exporter *export.Writer, metrics drepo.Metrics, log *logger.Logger, opts ...BatchOption) *Batch {
	b := &Batch{
		analyze:  analyze,
		hub:      hub,
		exporter: exporter,
		metrics:  metrics,
		log:      log,
		workers:  4,
		tasks:    make(chan *models.FileTask, 256),
		jobs:     make(map[string]*models.BatchJob),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.pipe = mid.NewAnalysisPipeline(taskRunner{b}, metrics)
	return b
}

// Start launches the worker pool. Safe to call once.
func (b *Batch) Start(ctx context.Context) {
	b.mu.Lock()
	if b.started {
		b.mu.Unlock()
		return
	}
	b.started = true
	b.mu.Unlock()

	b.pipe.Start(ctx)
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go func() {
			defer b.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t := <-b.tasks:
					if t == nil {
						continue
					}
					if err := b.pipe.Process(ctx, t); err != nil {
						b.log.Error("batch task failed", logger.String("path", t.Path), logger.Error(err))
					}
				}
			}
		}()
	}
	b.log.Info("batch workers started", logger.Int("workers", b.workers), logger.Bool("queue", b.queue != nil))
}

// Stop drains the pipeline and waits for workers to exit. The context
// passed to Start must be cancelled first.
func (b *Batch) Stop() {
	b.pipe.Stop()
	b.wg.Wait()
}

// ScanDir lists analysable exports under dir, sorted for stable order.
func ScanDir(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if csvExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("batch scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

// Submit registers a new batch job over the given files and enqueues
// its tasks. Returns immediately; progress arrives via the hub.
func (b *Batch) Submit(ctx context.Context, files []string, params models.Params) (*models.BatchJob, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("batch: no files to analyse")
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("batch: %w", err)
	}

	job := &models.BatchJob{
		ID:        uuid.NewString(),
		Status:    models.BatchRunning,
		Files:     files,
		Errors:    make(map[string]string),
		Params:    params,
		StartedAt: time.Now().UTC(),
	}
	b.mu.Lock()
	b.jobs[job.ID] = job
	b.mu.Unlock()

	for _, f := range files {
		task := &models.FileTask{BatchID: job.ID, Path: f, Params: params}
		if b.queue != nil {
			if err := b.queue.PublishMessage(ctx, TaskMessageType, task); err != nil {
				b.recordFailure(task, fmt.Errorf("publish: %w", err))
			}
			continue
		}
		select {
		case b.tasks <- task:
		case <-ctx.Done():
			return job, ctx.Err()
		}
	}

	b.log.Info("batch submitted", logger.String("batch_id", job.ID), logger.Int("files", len(files)))
	return job, nil
}

// SubmitDir scans a directory and submits everything it finds.
func (b *Batch) SubmitDir(ctx context.Context, dir string, params models.Params) (*models.BatchJob, error) {
	files, err := ScanDir(dir)
	if err != nil {
		return nil, err
	}
	return b.Submit(ctx, files, params)
}

// Job returns a snapshot copy of one job's state.
func (b *Batch) Job(id string) (*models.BatchJob, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	job, ok := b.jobs[id]
	if !ok {
		return nil, false
	}
	cp := *job
	cp.Reports = append([]*models.Report(nil), job.Reports...)
	cp.Errors = make(map[string]string, len(job.Errors))
	for k, v := range job.Errors {
		cp.Errors[k] = v
	}
	return &cp, true
}

// HandleTask analyses one file task and folds the outcome into its
// job. Queue consumers and in-process workers both end up here.
func (b *Batch) HandleTask(ctx context.Context, t *models.FileTask) error {
	report, err := b.analyze.FromPath(ctx, t.Path, t.Format, t.Params)
	if err != nil {
		b.recordFailure(t, err)
		// recorded against the job; do not bounce the task back
		// through the pipeline retry buffer
		return nil
	}
	b.recordSuccess(t, report)
	return nil
}

// taskRunner adapts Batch to the pipeline's Proc interface.
type taskRunner struct{ b *Batch }

func (r taskRunner) Process(ctx context.Context, t *models.FileTask) error {
	return r.b.HandleTask(ctx, t)
}

func (b *Batch) recordSuccess(t *models.FileTask, report *models.Report) {
	b.mu.Lock()
	job, ok := b.jobs[t.BatchID]
	if !ok {
		b.mu.Unlock()
		return
	}
	job.Reports = append(job.Reports, report)
	job.Completed++
	done := job.Completed == len(job.Files)
	completed, total := job.Completed, len(job.Files)
	b.mu.Unlock()

	b.hub.Publish(progress.Event{
		BatchID: t.BatchID, Type: progress.EventFileDone,
		File: t.Path, Completed: completed, Total: total,
	})
	if done {
		b.finish(t.BatchID)
	}
}

func (b *Batch) recordFailure(t *models.FileTask, err error) {
	b.mu.Lock()
	job, ok := b.jobs[t.BatchID]
	if !ok {
		b.mu.Unlock()
		return
	}
	job.Errors[t.Path] = err.Error()
	job.Completed++
	done := job.Completed == len(job.Files)
	completed, total := job.Completed, len(job.Files)
	b.mu.Unlock()

	b.metrics.RecordError("batch_file")
	b.hub.Publish(progress.Event{
		BatchID: t.BatchID, Type: progress.EventFileFailed,
		File: t.Path, Completed: completed, Total: total, Error: err.Error(),
	})
	if done {
		b.finish(t.BatchID)
	}
}

func (b *Batch) finish(id string) {
	b.mu.Lock()
	job, ok := b.jobs[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	job.Status = models.BatchFinished
	job.FinishedAt = time.Now().UTC()
	reports := append([]*models.Report(nil), job.Reports...)
	completed, total := job.Completed, len(job.Files)
	b.mu.Unlock()

	if b.exporter != nil && len(reports) > 0 {
		if paths, err := b.exporter.WriteBatch(id, reports); err != nil {
			b.log.Error("batch export failed", logger.String("batch_id", id), logger.Error(err))
		} else {
			b.log.Info("batch exported", logger.String("batch_id", id), logger.Strings("paths", paths))
		}
	}

	b.hub.Publish(progress.Event{
		BatchID: id, Type: progress.EventBatchFinished,
		Completed: completed, Total: total,
	})
	b.log.Info("batch finished",
		logger.String("batch_id", id),
		logger.Int("reports", len(reports)),
		logger.Int("total", total))
}
