package engine

import (
	"fmt"
	"math"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// ComputeMetrics scores predictions against actuals. Both slices must be
// equal length, index-aligned and free of nulls.
//
// MAPE divides by the actual value, so zero-valued actuals are skipped rather
// than propagating Inf; when every actual is zero a DegenerateMetricError is
// returned and callers should rely on SMAPE instead, which stays bounded in
// [0, 200].
func ComputeMetrics(actual, predicted []float64) (models.MetricSet, error) {
	if len(actual) != len(predicted) {
		return models.MetricSet{}, fmt.Errorf("metrics: length mismatch: %d actual vs %d predicted", len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return models.MetricSet{}, &DegenerateMetricError{Metric: "all", Reason: "empty input"}
	}

	n := float64(len(actual))
	var sumAbs, sumSq, sumActual float64
	for i := range actual {
		diff := predicted[i] - actual[i]
		sumAbs += math.Abs(diff)
		sumSq += diff * diff
		sumActual += actual[i]
	}
	mae := sumAbs / n
	mse := sumSq / n
	rmse := math.Sqrt(mse)

	meanActual := sumActual / n
	var ssTot float64
	for _, a := range actual {
		d := a - meanActual
		ssTot += d * d
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - sumSq/ssTot
	} else if sumSq > 0 {
		r2 = 0
	}

	mape, err := computeMAPE(actual, predicted)
	if err != nil {
		return models.MetricSet{}, err
	}

	var smape float64
	for i := range actual {
		denom := math.Abs(actual[i]) + math.Abs(predicted[i])
		if denom == 0 {
			continue
		}
		smape += 2 * math.Abs(predicted[i]-actual[i]) / denom
	}
	smape = smape / n * 100

	return models.MetricSet{MAE: mae, MSE: mse, RMSE: rmse, R2: r2, MAPE: mape, SMAPE: smape}, nil
}

func computeMAPE(actual, predicted []float64) (float64, error) {
	var sum float64
	count := 0
	for i := range actual {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		count++
	}
	if count == 0 {
		return 0, &DegenerateMetricError{Metric: "MAPE", Reason: "every actual value is zero"}
	}
	return sum / float64(count) * 100, nil
}
