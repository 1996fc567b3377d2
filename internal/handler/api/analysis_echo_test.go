package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"WCSPull/internal/domain/models"
	"WCSPull/internal/export"
	"WCSPull/internal/progress"
	"WCSPull/internal/services/analysis"
	"WCSPull/internal/usecase"
	xhttp "WCSPull/pkg/http"
	xlogger "WCSPull/pkg/logger"
)

type noopMetrics struct{}

func (noopMetrics) RecordFileAnalyzed(string)        {}
func (noopMetrics) RecordError(string)               {}
func (noopMetrics) RecordWCSDistance(string, float64) {}
func (noopMetrics) RecordLatency(string, float64)    {}

func newTestHandler(t *testing.T) (*AnalysisEchoHandler, *usecase.Batch, func()) {
	t.Helper()
	log, err := xlogger.New(&xlogger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	hub := progress.NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	analyze := usecase.NewAnalyzeFile(analysis.New(), nil, nil, noopMetrics{}, log)
	batch := usecase.NewBatch(analyze, hub, export.NewWriter(t.TempDir()), noopMetrics{}, log, usecase.WithWorkers(2))
	batch.Start(ctx)

	base := models.Params{
		SamplingRate: 10,
		Epochs:       []float64{0.05},
		Thresholds:   []models.ThresholdSpec{{Label: "Default", Min: 0, Max: 100}},
	}
	h := NewAnalysisEchoHandler(log, analyze, batch, hub, base, t.TempDir())
	return h, batch, func() {
		cancel()
		batch.Stop()
	}
}

func newServer(t *testing.T) (*echo.Echo, *usecase.Batch, func()) {
	h, batch, done := newTestHandler(t)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, batch, done
}

func uploadRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "session.csv")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(body)); err != nil {
		t.Fatalf("write form: %v", err)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func velocityCSV(samples int) string {
	body := "Timestamp,Velocity\n"
	for i := 0; i < samples; i++ {
		body += "0,4.0\n"
	}
	return body
}

func TestAnalyzeUpload(t *testing.T) {
	e, _, done := newServer(t)
	defer done()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, velocityCSV(60)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Status int            `json:"status"`
		Data   *models.Report `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data == nil || resp.Data.Samples != 60 {
		t.Fatalf("report: %+v", resp.Data)
	}
	if len(resp.Data.Results) != 2 {
		t.Fatalf("results: got %d", len(resp.Data.Results))
	}
}

func TestAnalyzeRejectsMissingInput(t *testing.T) {
	e, _, done := newServer(t)
	defer done()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewBufferString("{}"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected bad request envelope, got %d", resp.Status)
	}
}

func TestAnalyzeRejectsMalformedUpload(t *testing.T) {
	e, _, done := newServer(t)
	defer done()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "not,a,velocity\nfile,at,all\n"))

	var resp xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected bad request envelope, got %d", resp.Status)
	}
}

func TestBatchStatusNotFound(t *testing.T) {
	e, _, done := newServer(t)
	defer done()

	req := httptest.NewRequest(http.MethodGet, "/api/batch/nope", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Status != http.StatusNotFound {
		t.Fatalf("expected not found envelope, got %d", resp.Status)
	}
}

func TestCohortRequiresFinishedBatch(t *testing.T) {
	e, batch, done := newServer(t)
	defer done()

	// register a running job directly
	job, err := batch.Submit(context.Background(), []string{"/nonexistent/a.csv"}, models.Params{
		SamplingRate: 10,
		Epochs:       []float64{0.05},
		Thresholds:   []models.ThresholdSpec{{Label: "Default", Min: 0, Max: 100}},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// poll the status endpoint until the (failed) run settles
	deadline := time.After(3 * time.Second)
	for {
		snap, ok := batch.Job(job.ID)
		if ok && snap.Status == models.BatchFinished {
			break
		}
		select {
		case <-deadline:
			t.Fatal("batch never settled")
		case <-time.After(10 * time.Millisecond):
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/cohort/"+job.ID+"?epoch=0.05&threshold=Default&method=rolling", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var resp xhttp.APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	// every file failed, so the combination is absent
	if resp.Status != http.StatusBadRequest {
		t.Fatalf("expected bad request envelope, got %d", resp.Status)
	}
}

func TestHealthz(t *testing.T) {
	e, _, done := newServer(t)
	defer done()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
}
