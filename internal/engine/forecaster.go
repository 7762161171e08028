package engine

import (
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// forecaster is the capability every model family implements. Fit trains on
// the chronological train split; Predict emits hourly rows starting at start.
// Implementations are deterministic at inference: two Predict calls on the
// same fitted model yield identical output.
type forecaster interface {
	Fit(train models.TimeSeries) error
	Predict(start time.Time, steps int) []models.ForecastRow
}

// newForecaster builds the implementation for a model family.
func newForecaster(family models.ModelFamily) (forecaster, error) {
	switch family {
	case models.FamilyDecomposition:
		return newDecompositionModel(), nil
	case models.FamilyRandomForest:
		return newRandomForest(), nil
	case models.FamilyGradientBoosting:
		return newGradientBoosting(), nil
	case models.FamilySequence:
		return newSequenceModel(), nil
	default:
		return nil, &InvalidConfigurationError{Field: "model family", Value: string(family)}
	}
}

// pointRows wraps point-only predictions into forecast rows. Families without
// native uncertainty report lower = upper = point; callers may substitute
// their own default band.
func pointRows(start time.Time, points []float64) []models.ForecastRow {
	rows := make([]models.ForecastRow, len(points))
	ts := start
	for i, p := range points {
		rows[i] = models.ForecastRow{Timestamp: ts, Forecast: p, Lower: p, Upper: p}
		ts = ts.Add(time.Hour)
	}
	return rows
}
