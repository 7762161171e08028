package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	domsvc "github.com/sablalpz/GreenEnergy-Insights/internal/domain/service"
	"github.com/sablalpz/GreenEnergy-Insights/pkg/logger"
	"github.com/sablalpz/GreenEnergy-Insights/pkg/queue"
)

const retrainMessageType = "analytics.retrain"

// RetrainPayload is the queue message body for a scheduled retrain run.
type RetrainPayload struct {
	Indicator string `json:"indicator"`
	Family    string `json:"family"`
	Window    int    `json:"window"`
}

// RetrainJob consumes retrain messages and refreshes the model for one
// indicator, then runs a forecast and an anomaly scan on the fresh model so
// downstream consumers always see results from the latest training.
type RetrainJob struct {
	logger    *logger.Logger
	analytics domsvc.Analytics
	horizon   int
	fraction  float64
	methods   []models.DetectorMethod
}

func NewRetrainJob(lgr *logger.Logger, analytics domsvc.Analytics, horizon int, testFraction float64, methods []models.DetectorMethod) *RetrainJob {
	if horizon <= 0 {
		horizon = 24
	}
	if testFraction <= 0 || testFraction >= 1 {
		testFraction = 0.2
	}
	return &RetrainJob{
		logger:    lgr,
		analytics: analytics,
		horizon:   horizon,
		fraction:  testFraction,
		methods:   methods,
	}
}

func (j *RetrainJob) Name() string { return "analytics-retrain" }
func (j *RetrainJob) Type() string { return retrainMessageType }

func (j *RetrainJob) Handle(ctx context.Context, payload interface{}) error {
	p, err := queue.ParsePayload[RetrainPayload](payload)
	if err != nil {
		return fmt.Errorf("parse retrain payload: %w", err)
	}

	indicator := models.Indicator(p.Indicator)
	if !models.IsValidIndicator(indicator) {
		return fmt.Errorf("unknown indicator %q", p.Indicator)
	}
	family := models.ModelFamily(p.Family)
	if !models.IsValidFamily(family) {
		return fmt.Errorf("unknown model family %q", p.Family)
	}

	started := time.Now()
	report, err := j.analytics.Train(ctx, indicator, family, j.fraction, p.Window)
	if err != nil {
		return fmt.Errorf("retrain %s: %w", indicator, err)
	}

	j.logger.Info("model retrained",
		logger.String("indicator", string(indicator)),
		logger.String("family", string(family)),
		logger.Int("train_records", report.TrainRecords),
		logger.Int("test_records", report.TestRecords),
		logger.Duration("took", time.Since(started)))

	if _, err := j.analytics.Forecast(ctx, indicator, j.horizon); err != nil {
		j.logger.Error("post-retrain forecast failed",
			logger.String("indicator", string(indicator)), logger.Error(err))
	}
	if _, err := j.analytics.Detect(ctx, indicator, j.methods, p.Window); err != nil {
		j.logger.Error("post-retrain anomaly scan failed",
			logger.String("indicator", string(indicator)), logger.Error(err))
	}

	return nil
}

// RetrainScheduler periodically enqueues retrain messages for every tracked
// indicator. Publishing through the queue instead of calling the service
// directly keeps retraining off the scheduler goroutine and lets a worker
// pool absorb slow training runs.
type RetrainScheduler struct {
	logger     *logger.Logger
	publisher  queue.QueueService
	interval   time.Duration
	family     models.ModelFamily
	window     int
	indicators []models.Indicator

	stopCh chan struct{}
	done   chan struct{}
}

func NewRetrainScheduler(lgr *logger.Logger, publisher queue.QueueService, interval time.Duration, family models.ModelFamily, window int) *RetrainScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	if window <= 0 {
		window = 24 * 30
	}
	return &RetrainScheduler{
		logger:     lgr,
		publisher:  publisher,
		interval:   interval,
		family:     family,
		window:     window,
		indicators: []models.Indicator{models.IndicatorPrice, models.IndicatorDemand},
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start launches the scheduling loop. It returns immediately.
func (s *RetrainScheduler) Start(ctx context.Context) {
	go s.run(ctx)
	s.logger.Info("retrain scheduler started",
		logger.String("interval", s.interval.String()),
		logger.String("family", string(s.family)))
}

func (s *RetrainScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.enqueueAll(ctx)
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *RetrainScheduler) enqueueAll(ctx context.Context) {
	for _, indicator := range s.indicators {
		payload := RetrainPayload{
			Indicator: string(indicator),
			Family:    string(s.family),
			Window:    s.window,
		}
		if err := s.publisher.PublishMessage(ctx, retrainMessageType, payload); err != nil {
			s.logger.Error("failed to enqueue retrain",
				logger.String("indicator", string(indicator)), logger.Error(err))
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (s *RetrainScheduler) Stop() {
	close(s.stopCh)
	<-s.done
}
