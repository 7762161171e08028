package service

import (
	"context"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// Analytics is the application-facing port of the analytics engine: training,
// forecasting, anomaly scanning and model metrics over stored reading series.
type Analytics interface {
	Train(ctx context.Context, indicator models.Indicator, family models.ModelFamily, testFraction float64, n int) (models.TrainingReport, error)
	Forecast(ctx context.Context, indicator models.Indicator, horizon int) ([]models.ForecastRow, error)
	Detect(ctx context.Context, indicator models.Indicator, methods []models.DetectorMethod, n int) ([]models.AnomalyRecord, error)
	Report(ctx context.Context, indicator models.Indicator) (models.TrainingReport, error)
}
