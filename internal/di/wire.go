//go:build wireinject
// +build wireinject

package di

import (
	"PerpScout/pkg/config"
	"PerpScout/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideBinanceClient,
		ProvideMarkPriceStream,
		ProvideScanPublisher,
		ProvideScanArchive,
		ProvideKafkaConsumer,

		// Repositories and adapters
		ProvideJournalStore,
		ProvidePriceSource,
		ProvideNotifier,
		ProvideAdvisor,

		// Pipelines
		ProvideScreener,
		ProvideCorpus,
		ProvideSentimentAggregator,
		ProvideSynthesizer,

		// Use cases
		ProvideScanOrchestrator,
		ProvideScanService,
		ProvideAutoScanner,
		ProvideTradeJournal,
		ProvideSignalDispatcher,
		ProvideKafkaSignalsHandler,

		// Transport and application
		ProvideScanHandler,
		ProvideHTTPServer,
		ProvideApp,
	)
	return &server.App{}, nil
}
