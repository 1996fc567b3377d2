package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"WCSPull/internal/domain/models"
)

type countingProc struct {
	mu    sync.Mutex
	calls int
	fail  int // fail the first n calls
}

func (p *countingProc) Process(_ context.Context, _ *models.FileTask) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.calls <= p.fail {
		return errors.New("downstream unavailable")
	}
	return nil
}

func (p *countingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type nullMetrics struct{}

func (nullMetrics) RecordFileAnalyzed(string)         {}
func (nullMetrics) RecordError(string)                {}
func (nullMetrics) RecordWCSDistance(string, float64) {}
func (nullMetrics) RecordLatency(string, float64)     {}

func task() *models.FileTask {
	return &models.FileTask{
		BatchID: "b1",
		Path:    "/data/a.csv",
		Params: models.Params{
			SamplingRate: 10,
			Epochs:       []float64{1},
			Thresholds:   []models.ThresholdSpec{{Label: "Default", Min: 0, Max: 100}},
		},
	}
}

func TestProcessForwardsValidTask(t *testing.T) {
	proc := &countingProc{}
	p := NewAnalysisPipeline(proc, nullMetrics{})
	if err := p.Process(context.Background(), task()); err != nil {
		t.Fatalf("process: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("calls: got %d", proc.count())
	}
}

func TestProcessRejectsInvalidTask(t *testing.T) {
	proc := &countingProc{}
	p := NewAnalysisPipeline(proc, nullMetrics{})

	cases := []*models.FileTask{
		nil,
		{Path: "/a.csv"},       // missing batch id
		{BatchID: "b1"},        // missing path
		{BatchID: "b1", Path: "/a.csv"}, // invalid params
	}
	for i, tk := range cases {
		if err := p.Process(context.Background(), tk); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
	if proc.count() != 0 {
		t.Fatalf("invalid tasks must not reach downstream, calls %d", proc.count())
	}
}

func TestProcessBuffersOnFailureAndFlushes(t *testing.T) {
	proc := &countingProc{fail: 1}
	p := NewAnalysisPipeline(proc, nullMetrics{}, WithBufferSize(4))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	if err := p.Process(ctx, task()); err == nil {
		t.Fatal("expected downstream error on first attempt")
	}

	// background flusher retries the buffered task
	deadline := time.After(2 * time.Second)
	for proc.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("buffered task never flushed, calls %d", proc.count())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestThrottlePerDirectory(t *testing.T) {
	proc := &countingProc{}
	p := NewAnalysisPipeline(proc, nullMetrics{}, WithMaxRPS(1))

	first := task()
	second := task()
	second.Path = "/data/b.csv" // same directory

	if err := p.Process(context.Background(), first); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.Process(context.Background(), second); err != nil {
		t.Fatalf("throttled task should be dropped silently: %v", err)
	}
	if proc.count() != 1 {
		t.Fatalf("throttle: got %d downstream calls, want 1", proc.count())
	}
}
