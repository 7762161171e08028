package di

import (
    "context"
    "fmt"
    "time"

    "github.com/sablalpz/GreenEnergy-Insights/internal/domain/repository"
    mid "github.com/sablalpz/GreenEnergy-Insights/internal/middleware"
    internalrepo "github.com/sablalpz/GreenEnergy-Insights/internal/repository"
    "github.com/sablalpz/GreenEnergy-Insights/internal/service/meterfeed"
    "github.com/sablalpz/GreenEnergy-Insights/internal/usecase"
    pkgch "github.com/sablalpz/GreenEnergy-Insights/pkg/clickhouse"
    "github.com/sablalpz/GreenEnergy-Insights/pkg/config"
    pkgkafka "github.com/sablalpz/GreenEnergy-Insights/pkg/kafka"
    "github.com/sablalpz/GreenEnergy-Insights/pkg/metrics"
    "github.com/sablalpz/GreenEnergy-Insights/pkg/server"
)

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".meter_readings (ts DateTime, indicator String, value Float64, source String, event_id String) ENGINE=ReplacingMergeTree ORDER BY (indicator, ts)",
		"CREATE TABLE IF NOT EXISTS " + db + ".forecasts (ts DateTime, indicator String, family String, forecast Float64, lower Float64, upper Float64, generated_at DateTime) ENGINE=MergeTree ORDER BY (indicator, ts)",
		"CREATE TABLE IF NOT EXISTS " + db + ".anomalies (ts DateTime, indicator String, value Float64, kind String, severity String, method String, score Float64, detected_at DateTime) ENGINE=MergeTree ORDER BY (indicator, ts)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideReadingStorage creates ClickHouse storage repository.
func ProvideReadingStorage(chClient *pkgch.Client, cfg *config.Config) repository.Storage {
	return internalrepo.NewClickHouseStorage(chClient.DB(), cfg.ClickHouse.Database+".meter_readings")
}

// ProvideReadingPublisher creates Kafka publisher repository.
func ProvideReadingPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic)
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideKafkaReadingsHandler registers the handler for the readings topic.
func ProvideKafkaReadingsHandler(store repository.Storage, metrics repository.Metrics, cfg *config.Config) *usecase.KafkaReadingsHandler {
	return usecase.NewKafkaReadingsHandler(cfg.Kafka.Topic, store, metrics)
}

// ProvideMeterFeedStream creates the grid feed WebSocket stream.
func ProvideMeterFeedStream(cfg *config.Config) repository.ReadingStream {
	return meterfeed.New(
		cfg.MeterFeed.APIKey,
		cfg.MeterFeed.WebSocketURL,
		cfg.MeterFeed.Indicators,
		cfg.MeterFeed.ReconnectDelay,
		cfg.MeterFeed.PingInterval,
	)
}

// ProvideReadingProcessor creates the reading processor use case.
func ProvideReadingProcessor(
	pub repository.Publisher,
	store repository.Storage,
	metrics repository.Metrics,
	cfg *config.Config,
) *usecase.ReadingProcessor {
	return usecase.NewReadingProcessor(
		pub,
		store,
		metrics,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideReadingCollector creates the reading collector use case.
func ProvideReadingCollector(
    stream repository.ReadingStream,
    processor *usecase.ReadingProcessor,
    metrics repository.Metrics,
) *usecase.ReadingCollector {
    // Build middleware pipeline between the feed and Kafka
    pipe := mid.NewRealtimePipeline(processor, metrics,
        mid.WithMaxRPS(50),
        mid.WithBufferSize(2000),
    )
    return usecase.NewReadingCollector(stream, processor, metrics, pipe)
}

// ProvideApp creates the application server.
func ProvideApp(
    cfg *config.Config,
    collector *usecase.ReadingCollector,
    consumer *pkgkafka.Consumer,
    kh *usecase.KafkaReadingsHandler,
    chClient *pkgch.Client,
) *server.App {
    // Attach hook to consumer: example NoopHook for now; can be replaced via config
    if consumer != nil {
        consumer.WithConsumerHook(pkgkafka.NoopHook{})
    }
    app := server.New(cfg, collector, consumer, kh, chClient)
    // attach reading processor to app for closing resources via collector
    if collector != nil {
        app.ReadingProc = collector.Processor()
    }
    return app
}
