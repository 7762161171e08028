// Package engine implements the analytics core: model training and selection,
// short-horizon forecasting with uncertainty bands, a multi-method anomaly
// detection ensemble, and forecast-accuracy metrics. It consumes and produces
// only in-memory data; persistence, transport and scheduling live with the
// callers.
package engine

import (
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// minTrainObservations is the minimum series length accepted by Train.
const minTrainObservations = 100

// DefaultTestFraction is the share of the series withheld for evaluation.
const DefaultTestFraction = 0.2

// DefaultAnomalyThreshold is the z-score multiplier used when callers do not
// override it.
const DefaultAnomalyThreshold = 3.0

// Engine owns one trained model at a time. A second Train call replaces the
// previous model entirely. Calls are blocking and synchronous with no internal
// parallelism or retries; an instance must not be shared between goroutines
// without external synchronization.
type Engine struct {
	anomalyThreshold float64

	model    forecaster
	trained  bool
	trainEnd time.Time
	report   models.TrainingReport
}

// Option configures an Engine.
type Option func(*Engine)

// WithAnomalyThreshold overrides the z-score detector threshold.
func WithAnomalyThreshold(t float64) Option {
	return func(e *Engine) {
		if t > 0 {
			e.anomalyThreshold = t
		}
	}
}

// New creates an untrained engine.
func New(opts ...Option) *Engine {
	e := &Engine{anomalyThreshold: DefaultAnomalyThreshold}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Train fits the requested model family on a chronological split of series
// and evaluates it on the withheld test span. testFraction must lie in (0,1);
// pass 0 to use the default. A series shorter than 100 observations is
// rejected. Duplicate timestamps are not deduplicated; feeding them in is
// undefined behavior and callers must filter beforehand.
func (e *Engine) Train(series models.TimeSeries, family models.ModelFamily, testFraction float64) (models.TrainingReport, error) {
	if len(series) < minTrainObservations {
		return models.TrainingReport{}, &InsufficientDataError{Op: "train", Need: minTrainObservations, Got: len(series)}
	}
	if testFraction == 0 {
		testFraction = DefaultTestFraction
	}
	if testFraction <= 0 || testFraction >= 1 {
		return models.TrainingReport{}, &InvalidConfigurationError{Field: "test fraction", Value: formatFloat(testFraction)}
	}

	model, err := newForecaster(family)
	if err != nil {
		return models.TrainingReport{}, err
	}

	sorted := append(models.TimeSeries(nil), series...)
	sorted.SortByTime()
	train, test := sorted.SplitChronological(testFraction)

	if err := model.Fit(train); err != nil {
		return models.TrainingReport{}, err
	}

	// Evaluate on the test span: the reported accuracy is a single holdout
	// score, not a cross-validation estimate.
	testStart := train.LastTimestamp().Add(time.Hour)
	predicted := model.Predict(testStart, len(test))
	points := make([]float64, len(predicted))
	for i, row := range predicted {
		points[i] = row.Forecast
	}
	metrics, err := ComputeMetrics(test.Values(), points)
	if err != nil {
		return models.TrainingReport{}, err
	}

	// Replace any previously trained model.
	e.model = model
	e.trained = true
	e.trainEnd = train.LastTimestamp()
	e.report = models.TrainingReport{
		Family:       family,
		TrainRecords: len(train),
		TestRecords:  len(test),
		Metrics:      metrics,
		TrainedAt:    time.Now().UTC(),
	}
	return e.report, nil
}

// Forecast produces exactly horizon hourly rows starting one hour after the
// last training timestamp. Deterministic: repeated calls on the same trained
// model return identical output.
func (e *Engine) Forecast(horizon int) ([]models.ForecastRow, error) {
	if !e.trained {
		return nil, ErrUntrainedModel
	}
	if horizon <= 0 {
		return nil, &InvalidConfigurationError{Field: "forecast horizon", Value: formatInt(horizon)}
	}
	return e.model.Predict(e.trainEnd.Add(time.Hour), horizon), nil
}

// DetectAnomalies runs the requested detectors over the series and merges
// their outputs. Detection is independent of any trained model and of the
// forecast; it scans the observed series itself.
func (e *Engine) DetectAnomalies(series models.TimeSeries, methods []models.DetectorMethod) ([]models.AnomalyRecord, error) {
	if len(methods) == 0 {
		methods = models.DefaultMethods()
	}
	return runEnsemble(series, methods, e.anomalyThreshold)
}

// Report returns the most recent training report.
func (e *Engine) Report() (models.TrainingReport, error) {
	if !e.trained {
		return models.TrainingReport{}, ErrUntrainedModel
	}
	return e.report, nil
}

// Trained reports whether a model is currently available for forecasting.
func (e *Engine) Trained() bool { return e.trained }
