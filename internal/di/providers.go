package di

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"WCSPull/internal/domain/repository"
	"WCSPull/internal/export"
	"WCSPull/internal/handler/api"
	"WCSPull/internal/progress"
	"WCSPull/internal/services/analysis"
	"WCSPull/internal/usecase"
	"WCSPull/pkg/cache"
	"WCSPull/pkg/config"
	xhttp "WCSPull/pkg/http"
	"WCSPull/pkg/logger"
	"WCSPull/pkg/metrics"
	"WCSPull/pkg/queue"
	"WCSPull/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	l, err := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache selects the report cache backend from config.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	switch cfg.Cache.Backend {
	case "memory":
		var opts []cache.MemoryOption
		if cfg.Cache.MaxSize > 0 {
			opts = append(opts, cache.WithMemoryMaxSize(cfg.Cache.MaxSize))
		}
		return cache.NewMemoryCache(opts...), nil
	case "redis":
		c, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return c, nil
	case "layered":
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Redis.Host),
			cache.WithRedisPort(cfg.Redis.Port),
			cache.WithRedisPassword(cfg.Redis.Password),
			cache.WithRedisDB(cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("layered cache: %w", err)
		}
		return cache.NewLayeredCache(rc), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

// ProvideHTTPClient creates the client used for URL ingestion.
func ProvideHTTPClient() *xhttp.Client {
	return xhttp.NewClient()
}

// ProvideAnalyzer creates the core analysis orchestrator.
func ProvideAnalyzer() *analysis.Analyzer {
	return analysis.New()
}

// ProvideHub creates the progress WebSocket hub.
func ProvideHub(log *logger.Logger) *progress.Hub {
	return progress.NewHub(log)
}

// ProvideExporter creates the flat-file report writer.
func ProvideExporter(cfg *config.Config) *export.Writer {
	return export.NewWriter(cfg.Export.OutputDir)
}

// ProvideAnalyzeFile creates the single-file analysis use case.
func ProvideAnalyzeFile(
	analyzer *analysis.Analyzer,
	c cache.Service,
	client *xhttp.Client,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.AnalyzeFile {
	return usecase.NewAnalyzeFile(analyzer, c, client, m, log)
}

// ProvideQueuePublisher creates the task publisher when queue mode is
// enabled, nil otherwise.
func ProvideQueuePublisher(cfg *config.Config, log *logger.Logger) queue.QueueService {
	if !cfg.Batch.UseQueue {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return queue.NewRedisPublisher(log, client)
}

// ProvideBatch creates the batch processing use case.
func ProvideBatch(
	analyze *usecase.AnalyzeFile,
	hub *progress.Hub,
	exporter *export.Writer,
	m repository.Metrics,
	log *logger.Logger,
	pub queue.QueueService,
	cfg *config.Config,
) *usecase.Batch {
	opts := []usecase.BatchOption{usecase.WithWorkers(cfg.Batch.Workers)}
	if pub != nil {
		opts = append(opts, usecase.WithQueue(pub))
	}
	return usecase.NewBatch(analyze, hub, exporter, m, log, opts...)
}

// ProvideQueueConsumer creates the task consumer when queue mode is
// enabled, nil otherwise. The consumer is started by the app.
func ProvideQueueConsumer(cfg *config.Config, log *logger.Logger, batch *usecase.Batch) *queue.RedisQueue {
	if !cfg.Batch.UseQueue {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	return queue.NewRedisConsumer(log,
		&queue.QueueConfig{Workers: cfg.Batch.Workers, RetryLimit: 3},
		client,
		[]queue.Job{usecase.NewAnalyzeTaskJob(batch)},
	)
}

// ProvideHandler creates the HTTP API handler.
func ProvideHandler(
	log *logger.Logger,
	analyze *usecase.AnalyzeFile,
	batch *usecase.Batch,
	hub *progress.Hub,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewAnalysisEchoHandler(log, analyze, batch, hub, cfg.Params(), cfg.Ingest.DataDir)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	hub *progress.Hub,
	batch *usecase.Batch,
	consumer *queue.RedisQueue,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, hub, batch, consumer, handler)
}
