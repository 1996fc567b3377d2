package middleware

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"WCSPull/internal/domain/models"
	domrepo "WCSPull/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, t *models.FileTask) error
}

// AnalysisPipeline sits between batch submission and the analyzer
// workers. It validates tasks, throttles per source directory, and
// buffers tasks when downstream processing fails.
type AnalysisPipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.FileTask
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-directory last accepted time
}

type PipelineOption func(*AnalysisPipeline)

// WithMaxRPS sets the max tasks per second per source directory.
func WithMaxRPS(n int) PipelineOption {
	return func(p *AnalysisPipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the retry buffer size for failed tasks.
func WithBufferSize(n int) PipelineOption {
	return func(p *AnalysisPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewAnalysisPipeline creates a new pipeline.
func NewAnalysisPipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *AnalysisPipeline {
	p := &AnalysisPipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   0,   // no throttle by default; batch runs are offline
		bufSize:  256, // retry buffer
		bufCh:    make(chan *models.FileTask, 256),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.FileTask, p.bufSize)
	}
	return p
}

// Start launches background flushing of buffered tasks.
func (p *AnalysisPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case t := <-p.bufCh:
				if t == nil {
					continue
				}
				if err := p.proc.Process(ctx, t); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- t:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *AnalysisPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates and forwards one task downstream, buffering it for
// retry when processing fails.
func (p *AnalysisPipeline) Process(ctx context.Context, t *models.FileTask) error {
	start := time.Now()
	if err := validateTask(t); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if !p.allow(filepath.Dir(t.Path), start) {
		p.metrics.RecordError("pipeline_throttle")
		return nil
	}

	if err := p.proc.Process(ctx, t); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- t:
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

func validateTask(t *models.FileTask) error {
	if t == nil {
		return fmt.Errorf("task nil")
	}
	if t.BatchID == "" {
		return fmt.Errorf("batch id empty")
	}
	if t.Path == "" {
		return fmt.Errorf("path empty")
	}
	if err := t.Params.Validate(); err != nil {
		return fmt.Errorf("params: %w", err)
	}
	return nil
}

func (p *AnalysisPipeline) allow(dir string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	last := p.lastSeen[dir]
	if last.IsZero() {
		p.lastSeen[dir] = now
		return true
	}
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[dir] = now
	return true
}
