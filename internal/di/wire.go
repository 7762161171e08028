//go:build wireinject
// +build wireinject

package di

import (
	"github.com/sablalpz/GreenEnergy-Insights/pkg/config"
	"github.com/sablalpz/GreenEnergy-Insights/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
    wire.Build(
        // Metrics
        ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories (with business logic)
		ProvideReadingStorage,
		ProvideReadingPublisher,
		ProvideMeterFeedStream,

        // Use cases
        ProvideReadingProcessor,
        ProvideReadingCollector,
        ProvideKafkaReadingsHandler,

        // Application server
        ProvideApp,
    )
    return &server.App{}, nil
}
