package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"WCSPull/internal/domain/models"
	drepo "WCSPull/internal/domain/repository"
	"WCSPull/internal/ingest"
	"WCSPull/internal/services/analysis"
	"WCSPull/pkg/cache"
	httpkit "WCSPull/pkg/http"
	"WCSPull/pkg/logger"
)

const defaultReportTTL = time.Hour

// AnalyzeFile ingests one export and runs the full analysis, with a
// content-addressed report cache in front: identical file bytes under
// identical parameters return the cached report.
type AnalyzeFile struct {
	analyzer *analysis.Analyzer
	cache    cache.Service
	fetcher  *httpkit.Client
	metrics  drepo.Metrics
	log      *logger.Logger
	ttl      time.Duration
}

func NewAnalyzeFile(analyzer *analysis.Analyzer, c cache.Service, fetcher *httpkit.Client, metrics drepo.Metrics, log *logger.Logger) *AnalyzeFile {
	return &AnalyzeFile{
		analyzer: analyzer,
		cache:    c,
		fetcher:  fetcher,
		metrics:  metrics,
		log:      log,
		ttl:      defaultReportTTL,
	}
}

// FromReader analyses one export stream.
func (u *AnalyzeFile) FromReader(ctx context.Context, r io.Reader, opts ingest.Options, params models.Params) (*models.Report, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		u.metrics.RecordError("read")
		return nil, fmt.Errorf("analyze %s: %w", opts.Source, err)
	}
	return u.analyzeBytes(ctx, data, opts, params)
}

// FromPath analyses one export from disk.
func (u *AnalyzeFile) FromPath(ctx context.Context, path string, format string, params models.Params) (*models.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		u.metrics.RecordError("read")
		return nil, fmt.Errorf("analyze: %w", err)
	}
	opts := ingest.Options{
		Format:       ingest.Format(format),
		SamplingRate: params.SamplingRate,
		Source:       filepath.Base(path),
	}
	return u.analyzeBytes(ctx, data, opts, params)
}

// FromURL fetches a remote export and analyses it.
func (u *AnalyzeFile) FromURL(ctx context.Context, url string, format string, params models.Params) (*models.Report, error) {
	data, err := u.fetcher.Fetch(ctx, url)
	if err != nil {
		u.metrics.RecordError("fetch")
		return nil, fmt.Errorf("analyze %s: %w", url, err)
	}
	opts := ingest.Options{
		Format:       ingest.Format(format),
		SamplingRate: params.SamplingRate,
		Source:       url,
	}
	return u.analyzeBytes(ctx, data, opts, params)
}

func (u *AnalyzeFile) analyzeBytes(ctx context.Context, data []byte, opts ingest.Options, params models.Params) (*models.Report, error) {
	key, err := reportKey(data, params)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		var raw string
		if err := u.cache.Get(ctx, key, &raw); err == nil {
			var cached models.Report
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				u.log.Debug("report cache hit", logger.String("source", opts.Source))
				return &cached, nil
			}
		}
	}

	start := time.Now()
	session, err := ingest.Read(bytes.NewReader(data), opts)
	if err != nil {
		u.metrics.RecordError("ingest")
		return nil, err
	}
	report, err := u.analyzer.Analyze(ctx, session, params)
	if err != nil {
		u.metrics.RecordError("analyze")
		return nil, err
	}

	u.metrics.RecordFileAnalyzed(session.Format)
	u.metrics.RecordLatency("analyze", time.Since(start).Seconds())
	for _, er := range report.Results {
		if er.WCS.Found {
			u.metrics.RecordWCSDistance(string(er.Method), er.WCS.Distance)
		}
	}

	if u.cache != nil {
		if raw, err := json.Marshal(report); err == nil {
			if err := u.cache.Set(ctx, key, string(raw), u.ttl); err != nil {
				u.log.Warn("report cache set failed", logger.Error(err))
			}
		}
	}

	u.log.Info("file analysed",
		logger.String("source", opts.Source),
		logger.String("format", session.Format),
		logger.Int("samples", report.Samples),
		logger.Float64("total_distance_m", report.TotalDistance))
	return report, nil
}

// reportKey hashes file bytes together with the parameters so a
// parameter change never reuses a stale report.
func reportKey(data []byte, params models.Params) (string, error) {
	p, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("analyze: marshal params: %w", err)
	}
	h := sha256.New()
	h.Write(data)
	h.Write(p)
	return cache.GenerateKey("report", hex.EncodeToString(h.Sum(nil))), nil
}
