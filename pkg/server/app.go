package server

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	"github.com/sablalpz/GreenEnergy-Insights/internal/handler/api"
	"github.com/sablalpz/GreenEnergy-Insights/internal/repository"
	icache "github.com/sablalpz/GreenEnergy-Insights/internal/service/cache"
	"github.com/sablalpz/GreenEnergy-Insights/internal/usecase"
	pkgcache "github.com/sablalpz/GreenEnergy-Insights/pkg/cache"
	pkgch "github.com/sablalpz/GreenEnergy-Insights/pkg/clickhouse"
	"github.com/sablalpz/GreenEnergy-Insights/pkg/config"
	xhttp "github.com/sablalpz/GreenEnergy-Insights/pkg/http"
	pkgkafka "github.com/sablalpz/GreenEnergy-Insights/pkg/kafka"
	applogger "github.com/sablalpz/GreenEnergy-Insights/pkg/logger"
	"github.com/sablalpz/GreenEnergy-Insights/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.ReadingCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	scheduler   *usecase.RetrainScheduler
	retrainQ    *queue.RedisQueue
	ReadingProc *usecase.ReadingProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.ReadingCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	// Setup Echo HTTP server using pkg/http and register routes via handler
	var httpHandler xhttp.Handler
	if a.httpHandler != nil {
		httpHandler = a.httpHandler
	} else if a.chClient != nil {
		store := repository.NewCHReadingStore(a.chClient, a.cfg.ClickHouse.Database)
		store.SetLogger(l)

		var respCache icache.BytesCache = icache.NewTTLCache()
		if a.cfg.Analytics.Redis.Enabled {
			host, port := splitHostPort(a.cfg.Analytics.Redis.Addr)
			rc, err := pkgcache.NewRedisCache(
				pkgcache.WithRedisHost(host),
				pkgcache.WithRedisPort(port),
				pkgcache.WithRedisPassword(a.cfg.Analytics.Redis.Password),
				pkgcache.WithRedisDB(a.cfg.Analytics.Redis.DB),
			)
			if err != nil {
				l.Warn("redis cache unavailable, using in-memory TTL cache", applogger.Error(err))
			} else {
				respCache = icache.NewLayeredBytesCache(pkgcache.NewLayeredCache(rc))
			}
		}

		svc := usecase.NewAnalyticsService(store, store,
			usecase.WithForecastCache(respCache, a.cfg.Analytics.CacheTTL),
			usecase.WithAnomalyThreshold(a.cfg.Analytics.AnomalyThreshold),
		)
		httpHandler = api.NewAnalyticsHandler(l, svc)

		a.startRetrainLoop(ctx, l, svc)
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector
	go func() {
		if err := a.collector.Start(ctx); err != nil {
			l.Error("collector error", applogger.Error(err))
		}
	}()
	l.Info("collector started", applogger.Strings("indicators", a.cfg.MeterFeed.Indicators))

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// startRetrainLoop wires the periodic retrain scheduler. With Redis enabled
// the jobs go through the Redis-backed queue so workers absorb slow training;
// otherwise an inline queue executes them on the publishing goroutine.
func (a *App) startRetrainLoop(ctx context.Context, l *applogger.Logger, svc *usecase.AnalyticsService) {
	methods := make([]models.DetectorMethod, 0, len(a.cfg.Analytics.AnomalyMethods))
	for _, m := range a.cfg.Analytics.AnomalyMethods {
		methods = append(methods, models.DetectorMethod(m))
	}
	job := usecase.NewRetrainJob(l, svc, a.cfg.Analytics.ForecastHorizon, a.cfg.Analytics.TestFraction, methods)

	var publisher queue.QueueService
	if a.cfg.Analytics.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     a.cfg.Analytics.Redis.Addr,
			Password: a.cfg.Analytics.Redis.Password,
			DB:       a.cfg.Analytics.Redis.DB,
		})
		q := queue.NewRedisQueue(l, &queue.QueueConfig{Workers: 1}, rdb, queue.ModeProducerConsumer,
			queue.WithKeyPrefix("greenenergy:retrain"))
		q.RegisterJob(job)
		if err := q.Start(); err != nil {
			l.Error("retrain queue start failed", applogger.Error(err))
			return
		}
		a.retrainQ = q
		publisher = q
	} else {
		publisher = &inlineQueue{job: job}
	}

	a.scheduler = usecase.NewRetrainScheduler(l, publisher,
		a.cfg.Analytics.RetrainInterval,
		models.ModelFamily(a.cfg.Analytics.ModelFamily),
		a.cfg.Analytics.TrainWindow,
	)
	a.scheduler.Start(ctx)
}

func splitHostPort(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

// inlineQueue runs jobs synchronously when no Redis queue is configured.
type inlineQueue struct {
	job queue.Job
}

func (q *inlineQueue) PublishMessage(ctx context.Context, msgType string, payload interface{}) error {
	if msgType != q.job.Type() {
		return nil
	}
	return q.job.Handle(ctx, payload)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// best-effort logging via stdout
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop retrain scheduling first so no new jobs arrive
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.retrainQ != nil {
		if err := a.retrainQ.Stop(ctx); err != nil {
			l.Warn("retrain queue stop error", applogger.Error(err))
		}
	}

	// Stop collector (pipeline + stream)
	if err := a.collector.Shutdown(ctx); err != nil {
		l.Warn("collector stop error", applogger.Error(err))
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close reading processor resources (publisher/storage)
	if a.ReadingProc != nil {
		a.ReadingProc.Close()
	}

	l.Info("shutdown complete")
	return nil
}
