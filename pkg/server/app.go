package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"WCSPull/internal/progress"
	"WCSPull/internal/usecase"
	"WCSPull/pkg/config"
	xhttp "WCSPull/pkg/http"
	applogger "WCSPull/pkg/logger"
	"WCSPull/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	hub         *progress.Hub
	batch       *usecase.Batch
	consumer    *queue.RedisQueue
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	hub *progress.Hub,
	batch *usecase.Batch,
	consumer *queue.RedisQueue,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		hub:         hub,
		batch:       batch,
		consumer:    consumer,
		httpHandler: handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
	)

	// Progress hub and batch workers
	go a.hub.Run(ctx)
	a.batch.Start(ctx)
	a.log.Info("batch workers started", applogger.Int("workers", a.cfg.Batch.Workers))

	// Start queue consumer if configured
	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			a.log.Error("queue consumer start error", applogger.Error(err))
			return err
		}
		a.log.Info("queue consumer started")
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("server started",
		applogger.String("addr", a.cfg.Server.Host),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("environment", a.cfg.Environment))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("queue consumer stop error", applogger.Error(err))
		}
	}

	a.batch.Stop()

	a.log.Info("shutdown complete")
	return nil
}
