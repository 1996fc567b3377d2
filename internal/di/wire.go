//go:build wireinject
// +build wireinject

package di

import (
	"WCSPull/pkg/config"
	"WCSPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideCache,
		ProvideHTTPClient,
		ProvideQueuePublisher,
		ProvideQueueConsumer,

		// Core services
		ProvideAnalyzer,
		ProvideHub,
		ProvideExporter,

		// Use cases
		ProvideAnalyzeFile,
		ProvideBatch,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
