package engine

import (
	"errors"
	"math"
	"testing"
)

func TestMetricsPerfectPrediction(t *testing.T) {
	y := []float64{3, 7, 11, 2.5, 42}
	m, err := ComputeMetrics(y, y)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if m.MAE != 0 || m.MSE != 0 || m.RMSE != 0 || m.MAPE != 0 || m.SMAPE != 0 {
		t.Fatalf("identical series should score zero error, got %+v", m)
	}
	if m.R2 != 1 {
		t.Fatalf("identical series should have R2=1, got %v", m.R2)
	}
}

func TestMetricsKnownValues(t *testing.T) {
	actual := []float64{10, 20, 30}
	predicted := []float64{12, 18, 33}

	m, err := ComputeMetrics(actual, predicted)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	const eps = 1e-9
	if math.Abs(m.MAE-7.0/3) > eps {
		t.Fatalf("MAE: got %v", m.MAE)
	}
	if math.Abs(m.MSE-17.0/3) > eps {
		t.Fatalf("MSE: got %v", m.MSE)
	}
	if math.Abs(m.RMSE-math.Sqrt(17.0/3)) > eps {
		t.Fatalf("RMSE: got %v", m.RMSE)
	}
	// MAPE = mean(2/10, 2/20, 3/30)*100 = mean(0.2, 0.1, 0.1)*100
	if math.Abs(m.MAPE-40.0/3) > eps {
		t.Fatalf("MAPE: got %v", m.MAPE)
	}
}

func TestMetricsLengthMismatch(t *testing.T) {
	if _, err := ComputeMetrics([]float64{1, 2}, []float64{1}); err == nil {
		t.Fatalf("expected error on length mismatch")
	}
}

func TestMAPESkipsZeroActuals(t *testing.T) {
	// The zero-valued actual must not poison MAPE with Inf.
	m, err := ComputeMetrics([]float64{0, 10, 20}, []float64{5, 11, 18})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if math.IsInf(m.MAPE, 0) || math.IsNaN(m.MAPE) {
		t.Fatalf("MAPE not finite: %v", m.MAPE)
	}
	// mean(1/10, 2/20)*100 = 10
	if math.Abs(m.MAPE-10) > 1e-9 {
		t.Fatalf("MAPE should skip zero actuals: got %v", m.MAPE)
	}
}

func TestMAPEAllZeroActuals(t *testing.T) {
	_, err := ComputeMetrics([]float64{0, 0, 0}, []float64{1, 2, 3})
	var degenerate *DegenerateMetricError
	if !errors.As(err, &degenerate) {
		t.Fatalf("expected DegenerateMetricError, got %v", err)
	}
	if degenerate.Metric != "MAPE" {
		t.Fatalf("unexpected metric name %q", degenerate.Metric)
	}
}

func TestR2ConstantActuals(t *testing.T) {
	m, err := ComputeMetrics([]float64{5, 5, 5}, []float64{5, 5, 5})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if m.R2 != 1 {
		t.Fatalf("perfect constant prediction should score R2=1, got %v", m.R2)
	}

	m, err = ComputeMetrics([]float64{5, 5, 5}, []float64{4, 6, 5})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if m.R2 != 0 {
		t.Fatalf("imperfect prediction of a constant should score R2=0, got %v", m.R2)
	}
}

func TestSMAPEBounded(t *testing.T) {
	m, err := ComputeMetrics([]float64{1, 2, 3}, []float64{-1, -2, -3})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if m.SMAPE < 0 || m.SMAPE > 200 {
		t.Fatalf("SMAPE out of range: %v", m.SMAPE)
	}
}
