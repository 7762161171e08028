package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

func hourlyFrom(values []float64) models.TimeSeries {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := make(models.TimeSeries, len(values))
	for i, v := range values {
		series[i] = models.Point{Timestamp: start.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return series
}

func constantWithOutlier(n, outlierIdx int, base, outlier float64) models.TimeSeries {
	values := make([]float64, n)
	for i := range values {
		values[i] = base
	}
	values[outlierIdx] = outlier
	return hourlyFrom(values)
}

func TestZScoreSingleOutlier(t *testing.T) {
	series := constantWithOutlier(100, 40, 10, 60)

	records, err := (&zscoreDetector{threshold: 3}).Detect(series)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(records))
	}
	rec := records[0]
	if rec.Kind != models.KindSpike {
		t.Fatalf("expected spike, got %s", rec.Kind)
	}
	if rec.Severity != models.SeverityCritical {
		t.Fatalf("offset far beyond 4 sigma should be critical, got %s", rec.Severity)
	}
	if rec.Method != models.MethodZScore {
		t.Fatalf("unexpected method %s", rec.Method)
	}
	if rec.Score <= 4 {
		t.Fatalf("expected z score > 4, got %v", rec.Score)
	}
}

func TestZScoreConstantSeries(t *testing.T) {
	records, err := (&zscoreDetector{threshold: 3}).Detect(hourlyFrom([]float64{5, 5, 5, 5, 5}))
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("constant series should yield no anomalies, got %d", len(records))
	}
}

func TestIQRSpikeScenario(t *testing.T) {
	series := hourlyFrom([]float64{10, 10, 10, 10, 100, 10, 10, 10, 10, 10})

	records, err := (&iqrDetector{}).Detect(series)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected exactly 1 anomaly, got %d", len(records))
	}
	if records[0].Value != 100 || records[0].Kind != models.KindSpike {
		t.Fatalf("expected value=100 spike, got %+v", records[0])
	}
}

func TestIQRSeverityBounds(t *testing.T) {
	// Sorted layout gives Q1=10, Q3=20 (IQR=10): fences at -5/35, critical
	// beyond -20/50.
	series := hourlyFrom([]float64{-30, -10, 10, 10, 10, 10, 15, 15, 15, 20, 20, 40, 60})

	records, err := (&iqrDetector{}).Detect(series)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	want := map[float64]struct {
		kind     models.AnomalyKind
		severity models.Severity
	}{
		-30: {models.KindDrop, models.SeverityCritical},
		-10: {models.KindDrop, models.SeverityHigh},
		40:  {models.KindSpike, models.SeverityHigh},
		60:  {models.KindSpike, models.SeverityCritical},
	}
	if len(records) != len(want) {
		t.Fatalf("expected %d anomalies, got %d", len(want), len(records))
	}
	for _, rec := range records {
		expect, ok := want[rec.Value]
		if !ok {
			t.Fatalf("unexpected anomaly value %v", rec.Value)
		}
		if rec.Kind != expect.kind || rec.Severity != expect.severity {
			t.Fatalf("value %v: got %s/%s, want %s/%s", rec.Value, rec.Kind, rec.Severity, expect.kind, expect.severity)
		}
	}
}

func TestAbruptChangeDetector(t *testing.T) {
	series := hourlyFrom([]float64{10, 11, 10, 11, 10, 11, 10, 11, 10, 50})

	records, err := (&abruptChangeDetector{}).Detect(series)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 anomaly, got %d", len(records))
	}
	rec := records[0]
	if rec.Kind != models.KindAbruptChange {
		t.Fatalf("expected abrupt_change, got %s", rec.Kind)
	}
	if rec.Value != 50 {
		t.Fatalf("expected anomaly at the jump target, got value %v", rec.Value)
	}
	if rec.Score <= 1 {
		t.Fatalf("score should exceed 1 for a flagged jump, got %v", rec.Score)
	}
}

func TestIsolationForestShortSeries(t *testing.T) {
	records, err := (&isolationForestDetector{}).Detect(hourlyFrom([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9}))
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("fewer than 10 points should yield no anomalies, got %d", len(records))
	}
}

func TestIsolationForestFlagsOutlier(t *testing.T) {
	series := constantWithOutlier(100, 50, 10, 100)

	records, err := (&isolationForestDetector{}).Detect(series)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	found := false
	for _, rec := range records {
		if rec.Kind != models.KindAnomalousPattern {
			t.Fatalf("expected anomalous_pattern, got %s", rec.Kind)
		}
		if rec.Value == 100 {
			found = true
		}
	}
	if !found {
		t.Fatalf("outlier was not flagged; records: %+v", records)
	}
}

func TestEnsembleKeepsFirstMethod(t *testing.T) {
	// Both detectors flag the single outlier; the surviving record must be
	// attributed to whichever method was requested first.
	series := constantWithOutlier(100, 30, 10, 110)

	records, err := runEnsemble(series, []models.DetectorMethod{models.MethodIQR, models.MethodZScore}, 3)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 merged anomaly, got %d", len(records))
	}
	if records[0].Method != models.MethodIQR {
		t.Fatalf("expected first-listed method iqr to win, got %s", records[0].Method)
	}

	records, err = runEnsemble(series, []models.DetectorMethod{models.MethodZScore, models.MethodIQR}, 3)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(records) != 1 || records[0].Method != models.MethodZScore {
		t.Fatalf("expected zscore to win when listed first, got %+v", records)
	}
}

func TestEnsembleSortedOutput(t *testing.T) {
	values := make([]float64, 150)
	for i := range values {
		values[i] = 10
	}
	values[120] = 200
	values[20] = -180
	series := hourlyFrom(values)

	records, err := runEnsemble(series, []models.DetectorMethod{models.MethodZScore, models.MethodIQR}, 3)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	if len(records) < 2 {
		t.Fatalf("expected both outliers flagged, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].Timestamp.Before(records[i-1].Timestamp) {
			t.Fatalf("records not sorted by timestamp")
		}
	}
}

func TestEnsembleUnknownMethod(t *testing.T) {
	_, err := runEnsemble(hourlyFrom([]float64{1, 2, 3}), []models.DetectorMethod{"dbscan"}, 3)
	var invalid *InvalidConfigurationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigurationError, got %v", err)
	}
}

func TestEnsembleDoesNotMutateInput(t *testing.T) {
	series := hourlyFrom([]float64{5, 4, 3, 2, 100, 2, 3, 4, 5, 4, 3, 2})
	snapshot := append(models.TimeSeries(nil), series...)

	if _, err := runEnsemble(series, []models.DetectorMethod{models.MethodZScore, models.MethodAbruptChange}, 3); err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}
	for i := range series {
		if series[i] != snapshot[i] {
			t.Fatalf("input mutated at %d", i)
		}
	}
}
