package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	domrepo "github.com/sablalpz/GreenEnergy-Insights/internal/domain/repository"
	domsvc "github.com/sablalpz/GreenEnergy-Insights/internal/domain/service"
	"github.com/sablalpz/GreenEnergy-Insights/internal/engine"
	icache "github.com/sablalpz/GreenEnergy-Insights/internal/service/cache"
)

// AnalyticsService orchestrates the engine over stored series: it loads
// readings, trains, forecasts, scans for anomalies and persists the results.
// One engine instance is held per indicator; access is serialized because the
// engine itself is single-threaded by contract.
type AnalyticsService struct {
	store   domrepo.ReadingStore
	results domrepo.ResultStore
	cache   icache.BytesCache
	ttl     time.Duration

	threshold float64

	mu      sync.Mutex
	engines map[models.Indicator]*engine.Engine
}

type AnalyticsOption func(*AnalyticsService)

// WithForecastCache enables response caching for forecast and detection runs.
func WithForecastCache(c icache.BytesCache, ttl time.Duration) AnalyticsOption {
	return func(s *AnalyticsService) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithAnomalyThreshold overrides the z-score detector threshold.
func WithAnomalyThreshold(t float64) AnalyticsOption {
	return func(s *AnalyticsService) {
		if t > 0 {
			s.threshold = t
		}
	}
}

func NewAnalyticsService(store domrepo.ReadingStore, results domrepo.ResultStore, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		store:     store,
		results:   results,
		threshold: engine.DefaultAnomalyThreshold,
		engines:   make(map[models.Indicator]*engine.Engine),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AnalyticsService) engineFor(indicator models.Indicator) *engine.Engine {
	e, ok := s.engines[indicator]
	if !ok {
		e = engine.New(engine.WithAnomalyThreshold(s.threshold))
		s.engines[indicator] = e
	}
	return e
}

// Train loads the latest n readings and fits the requested family. Training
// is blocking and can be slow for the sequence family; callers wanting a
// deadline wrap ctx themselves.
func (s *AnalyticsService) Train(ctx context.Context, indicator models.Indicator, family models.ModelFamily, testFraction float64, n int) (models.TrainingReport, error) {
	series, err := s.store.GetLatestN(ctx, indicator, n)
	if err != nil {
		return models.TrainingReport{}, fmt.Errorf("load series: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineFor(indicator).Train(series, family, testFraction)
}

// Forecast returns horizon hourly rows from the trained model and persists
// them. The cache key includes the training timestamp, so retraining
// naturally invalidates prior entries.
func (s *AnalyticsService) Forecast(ctx context.Context, indicator models.Indicator, horizon int) ([]models.ForecastRow, error) {
	s.mu.Lock()
	eng := s.engineFor(indicator)
	report, reportErr := eng.Report()
	if reportErr != nil {
		s.mu.Unlock()
		return nil, reportErr
	}
	key := fmt.Sprintf("forecast:%s:%d:%d", indicator, horizon, report.TrainedAt.UnixNano())
	if rows, ok := s.cached(key); ok {
		s.mu.Unlock()
		return rows, nil
	}
	rows, err := eng.Forecast(horizon)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.results != nil {
		if err := s.results.SaveForecasts(ctx, indicator, report.Family, rows); err != nil {
			return nil, fmt.Errorf("persist forecasts: %w", err)
		}
	}
	s.cacheRows(key, rows)
	return rows, nil
}

// Detect runs the anomaly ensemble over the latest n readings and persists
// the merged result set.
func (s *AnalyticsService) Detect(ctx context.Context, indicator models.Indicator, methods []models.DetectorMethod, n int) ([]models.AnomalyRecord, error) {
	series, err := s.store.GetLatestN(ctx, indicator, n)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}

	s.mu.Lock()
	records, err := s.engineFor(indicator).DetectAnomalies(series, methods)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if s.results != nil {
		if err := s.results.SaveAnomalies(ctx, indicator, records); err != nil {
			return nil, fmt.Errorf("persist anomalies: %w", err)
		}
	}
	return records, nil
}

// Report returns the last training report for an indicator.
func (s *AnalyticsService) Report(ctx context.Context, indicator models.Indicator) (models.TrainingReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engineFor(indicator).Report()
}

func (s *AnalyticsService) cached(key string) ([]models.ForecastRow, bool) {
	if s.cache == nil {
		return nil, false
	}
	b, ok, err := s.cache.GetBytes(key)
	if err != nil || !ok {
		return nil, false
	}
	var rows []models.ForecastRow
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, false
	}
	return rows, true
}

func (s *AnalyticsService) cacheRows(key string, rows []models.ForecastRow) {
	if s.cache == nil {
		return
	}
	if b, err := json.Marshal(rows); err == nil {
		_ = s.cache.SetBytes(key, b, s.ttl)
	}
}

var _ domsvc.Analytics = (*AnalyticsService)(nil)
