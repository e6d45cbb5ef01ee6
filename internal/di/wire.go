//go:build wireinject
// +build wireinject

package di

import (
	"CoinSage/pkg/config"
	"CoinSage/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideRedisCache,

		// Repositories
		ProvideSampleStorage,
		ProvideSamplePublisher,
		ProvidePriceFeed,
		ProvideAuditLog,
		ProvideStateStore,
		ProvideRangeProvider,
		ProvideItemRegistry,
		ProvideMarketStream,

		// Domain services
		ProvideAnalyzer,
		ProvideStability,
		ProvideScoringParams,
		ProvideScorer,
		ProvideHysteresis,
		ProvidePulse,
		ProvideAlertSink,

		// Use cases
		ProvideEngine,
		ProvideSnapshot,
		ProvideMonitor,
		ProvideSampleProcessor,
		ProvideSampleCollector,
		ProvideKafkaSamplesHandler,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
