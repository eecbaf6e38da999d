//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"FeeCast/pkg/config"
	"FeeCast/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaPublisher,
		ProvideSubgraphClient,
		ProvideFeeSource,

		// Engine and use cases
		ProvideEngine,
		ProvideForecastUseCase,
		ProvideSnapshotSync,
		ProvideKafkaConsumer,

		// Transport and scheduling
		ProvideForecastHandler,
		ProvideHTTPServer,
		ProvideScheduler,

		ProvideInfra,
		ProvideApp,
	)
	return &server.App{}, nil
}
