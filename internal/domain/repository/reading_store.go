package repository

import (
	"context"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// ReadingStore provides read-only access to stored reading series for the
// analytics layer. Series come back chronologically sorted with nulls already
// filtered, ready to feed the engine.
type ReadingStore interface {
	GetSeries(ctx context.Context, indicator models.Indicator, from, to time.Time) (models.TimeSeries, error)
	GetLatestN(ctx context.Context, indicator models.Indicator, n int) (models.TimeSeries, error)
}

// ResultStore persists engine outputs. A fresh detection run replaces the
// caller-visible anomaly set for the scanned window.
type ResultStore interface {
	SaveForecasts(ctx context.Context, indicator models.Indicator, family models.ModelFamily, rows []models.ForecastRow) error
	SaveAnomalies(ctx context.Context, indicator models.Indicator, records []models.AnomalyRecord) error
}
