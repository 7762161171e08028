package models

import "time"

// ModelFamily selects which forecaster implementation the engine trains.
type ModelFamily string

const (
	FamilyDecomposition    ModelFamily = "decomposition"
	FamilyRandomForest     ModelFamily = "random_forest"
	FamilyGradientBoosting ModelFamily = "gradient_boosting"
	FamilySequence         ModelFamily = "sequence"
)

// IsValidFamily returns true if the family is supported.
func IsValidFamily(f ModelFamily) bool {
	switch f {
	case FamilyDecomposition, FamilyRandomForest, FamilyGradientBoosting, FamilySequence:
		return true
	default:
		return false
	}
}

// AnomalyKind classifies the shape of a detected anomaly.
type AnomalyKind string

const (
	KindSpike            AnomalyKind = "spike"
	KindDrop             AnomalyKind = "drop"
	KindAbruptChange     AnomalyKind = "abrupt_change"
	KindAnomalousPattern AnomalyKind = "anomalous_pattern"
)

// Severity buckets a detector's numeric score into a qualitative level.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// DetectorMethod names one member of the anomaly ensemble.
type DetectorMethod string

const (
	MethodZScore          DetectorMethod = "zscore"
	MethodIQR             DetectorMethod = "iqr"
	MethodIsolationForest DetectorMethod = "isolation_forest"
	MethodAbruptChange    DetectorMethod = "abrupt_change"
)

// IsValidMethod returns true if the detector name is supported.
func IsValidMethod(m DetectorMethod) bool {
	switch m {
	case MethodZScore, MethodIQR, MethodIsolationForest, MethodAbruptChange:
		return true
	default:
		return false
	}
}

// DefaultMethods is the detector set used when a caller does not specify one.
func DefaultMethods() []DetectorMethod {
	return []DetectorMethod{MethodZScore, MethodIQR, MethodIsolationForest}
}

// ForecastRow is one step of a forecast: point estimate plus confidence band.
// Families without native uncertainty set Lower = Upper = Forecast.
type ForecastRow struct {
	Timestamp time.Time
	Forecast  float64
	Lower     float64
	Upper     float64
}

// AnomalyRecord is one flagged observation. Records are transient: a fresh
// detection run fully replaces the previous result set held by the caller.
type AnomalyRecord struct {
	Timestamp time.Time
	Value     float64
	Kind      AnomalyKind
	Severity  Severity
	Method    DetectorMethod
	Score     float64
}

// MetricSet holds standard forecast-accuracy metrics. Immutable once computed.
type MetricSet struct {
	MAE   float64
	MSE   float64
	RMSE  float64
	R2    float64
	MAPE  float64
	SMAPE float64
}

// TrainingReport summarizes a completed training run. Metrics are computed on
// the withheld test span, not by cross-validation.
type TrainingReport struct {
	Family       ModelFamily
	TrainRecords int
	TestRecords  int
	Metrics      MetricSet
	TrainedAt    time.Time
}
