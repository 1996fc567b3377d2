package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"WCSPull/internal/domain/models"
	"WCSPull/internal/ingest"
	icache "WCSPull/internal/service/cache"
	"WCSPull/internal/service/metrics"
	"WCSPull/internal/service/ratelimit"
	"WCSPull/internal/services/cohort"
	"WCSPull/internal/usecase"
	xhttp "WCSPull/pkg/http"
	xlogger "WCSPull/pkg/logger"
)

const cohortCacheTTL = 60 * time.Second

// AnalysisEchoHandler exposes the analysis API over Echo.
type AnalysisEchoHandler struct {
	logger  *xlogger.Logger
	analyze *usecase.AnalyzeFile
	batch   *usecase.Batch
	ws      WSHandler

	base    models.Params // configured defaults for epochs and thresholds
	rl      *ratelimit.Limiter
	ttl     *icache.TTLCache
	dataDir string
}

// WSHandler upgrades a request into a progress subscription.
type WSHandler interface {
	ServeWS(c echo.Context) error
}

func NewAnalysisEchoHandler(logger *xlogger.Logger, analyze *usecase.AnalyzeFile, batch *usecase.Batch, ws WSHandler, base models.Params, dataDir string) *AnalysisEchoHandler {
	metrics.Register()
	return &AnalysisEchoHandler{
		logger:  logger,
		analyze: analyze,
		batch:   batch,
		ws:      ws,
		base:    base,
		rl:      ratelimit.New(),
		ttl:     icache.NewTTLCache(),
		dataDir: dataDir,
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.POST("/analyze", h.Analyze)
	g.POST("/batch", h.StartBatch)
	g.GET("/batch/:id", h.BatchStatus)
	g.GET("/cohort/:id", h.Cohort)

	e.GET("/ws/progress", h.Progress)
	e.GET("/healthz", h.Healthz)
}

// Analyze handles one export, uploaded as multipart field "file" or
// referenced by URL.
func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.AnalysisLatency.WithLabelValues("analyze").Observe(time.Since(start).Seconds()) }()

	req := &models.AnalyzeRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":analyze", 5, 2) {
		h.logger.Warn("analyze rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	params := h.params(req.SamplingRate, req.Epochs)
	params.TieBreak = models.TieBreak(req.TieBreak)
	params.KeepProfile = req.KeepProfile

	var (
		report *models.Report
		err    error
	)
	if file, ferr := c.FormFile("file"); ferr == nil {
		src, oerr := file.Open()
		if oerr != nil {
			metrics.AnalysisErrors.WithLabelValues("analyze").Inc()
			return xhttp.AppErrorResponse(c, xhttp.InternalErrorf("open upload: %v", oerr))
		}
		defer src.Close()
		report, err = h.analyze.FromReader(c.Request().Context(), src, uploadOptions(file.Filename, req.Format, params), params)
	} else if req.URL != "" {
		report, err = h.analyze.FromURL(c.Request().Context(), req.URL, req.Format, params)
	} else {
		return xhttp.BadRequestResponse(c, []xhttp.ValidationError{{
			Code:    "ERR_REQUIRED",
			Field:   "file",
			Message: "either a file upload or a url is required",
		}})
	}
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues("analyze").Inc()
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.SuccessResponse(c, report)
}

// StartBatch launches a batch run and returns its job id immediately.
func (h *AnalysisEchoHandler) StartBatch(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.AnalysisLatency.WithLabelValues("batch").Observe(time.Since(start).Seconds()) }()

	req := &models.BatchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":batch", 2, 0.5) {
		h.logger.Warn("batch rate_limited", xlogger.String("remote", c.RealIP()))
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("ERR_RATE_LIMITED", "", "too many requests", 429))
	}

	params := h.params(req.SamplingRate, req.Epochs)

	var (
		job *models.BatchJob
		err error
	)
	if len(req.Files) > 0 {
		job, err = h.batch.Submit(c.Request().Context(), req.Files, params)
	} else {
		dir := req.Dir
		if dir == "" {
			dir = h.dataDir
		}
		job, err = h.batch.SubmitDir(c.Request().Context(), dir, params)
	}
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues("batch").Inc()
		h.logger.Error("batch usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}
	return xhttp.CreatedResponse(c, map[string]interface{}{
		"id":     job.ID,
		"status": job.Status,
		"files":  len(job.Files),
	})
}

// BatchStatus returns a snapshot of one batch job.
func (h *AnalysisEchoHandler) BatchStatus(c echo.Context) error {
	job, ok := h.batch.Job(c.Param("id"))
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("batch %s not found", c.Param("id")))
	}
	return xhttp.SuccessResponse(c, job)
}

// Cohort aggregates a finished batch per player. Results are cached
// briefly since cohort queries tend to arrive in bursts from dashboards.
func (h *AnalysisEchoHandler) Cohort(c echo.Context) error {
	start := time.Now()
	defer func() { metrics.AnalysisLatency.WithLabelValues("cohort").Observe(time.Since(start).Seconds()) }()

	req := &models.CohortRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	id := c.Param("id")

	cacheKey := "cohort:" + id + ":" + req.Threshold + ":" + req.Method + ":" + c.QueryParam("epoch")
	if v, ok := h.ttl.Get(cacheKey); ok {
		if cached, ok := v.(*models.CohortReport); ok {
			return xhttp.SuccessResponse(c, cached)
		}
	}

	job, ok := h.batch.Job(id)
	if !ok {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("batch %s not found", id))
	}
	if job.Status != models.BatchFinished {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("batch %s is still %s", id, job.Status))
	}

	rep, err := cohort.Analyze(id, job.Reports, req.EpochMinutes, req.Threshold, models.Method(req.Method))
	if err != nil {
		metrics.AnalysisErrors.WithLabelValues("cohort").Inc()
		h.logger.Error("cohort error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()))
	}

	h.ttl.Set(cacheKey, rep, cohortCacheTTL)
	return xhttp.SuccessResponse(c, rep)
}

// Progress upgrades the connection into a progress event stream.
func (h *AnalysisEchoHandler) Progress(c echo.Context) error {
	return h.ws.ServeWS(c)
}

func (h *AnalysisEchoHandler) Healthz(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// params merges per-request overrides onto the configured defaults.
func (h *AnalysisEchoHandler) params(rate float64, epochs []float64) models.Params {
	p := h.base
	p.Thresholds = append([]models.ThresholdSpec(nil), h.base.Thresholds...)
	p.Epochs = append([]float64(nil), h.base.Epochs...)
	if rate > 0 {
		p.SamplingRate = rate
	}
	if len(epochs) > 0 {
		p.Epochs = epochs
	}
	return p
}

func uploadOptions(filename, format string, params models.Params) ingest.Options {
	return ingest.Options{
		Format:       ingest.Format(format),
		SamplingRate: params.SamplingRate,
		Source:       filename,
	}
}
