package engine

import (
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

func sineSeries(n int, seed int64) models.TimeSeries {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	series := make(models.TimeSeries, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(i) * time.Hour)
		value := 100 + 20*math.Sin(2*math.Pi*float64(ts.Hour())/24) + rng.NormFloat64()*5
		series[i] = models.Point{Timestamp: ts, Value: value}
	}
	return series
}

func TestTrainRejectsShortSeries(t *testing.T) {
	families := []models.ModelFamily{
		models.FamilyDecomposition,
		models.FamilyRandomForest,
		models.FamilyGradientBoosting,
		models.FamilySequence,
	}
	for _, family := range families {
		e := New()
		_, err := e.Train(sineSeries(99, 1), family, 0.2)
		var insufficient *InsufficientDataError
		if !errors.As(err, &insufficient) {
			t.Fatalf("family %s: expected InsufficientDataError, got %v", family, err)
		}
		if insufficient.Need != 100 || insufficient.Got != 99 {
			t.Fatalf("family %s: unexpected bounds %d/%d", family, insufficient.Need, insufficient.Got)
		}
	}
}

func TestTrainUnknownFamily(t *testing.T) {
	e := New()
	_, err := e.Train(sineSeries(200, 1), models.ModelFamily("arima"), 0.2)
	var invalid *InvalidConfigurationError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidConfigurationError, got %v", err)
	}
}

func TestTrainInvalidTestFraction(t *testing.T) {
	e := New()
	for _, frac := range []float64{-0.1, 1.0, 1.5} {
		_, err := e.Train(sineSeries(200, 1), models.FamilyDecomposition, frac)
		var invalid *InvalidConfigurationError
		if !errors.As(err, &invalid) {
			t.Fatalf("fraction %v: expected InvalidConfigurationError, got %v", frac, err)
		}
	}
}

func TestForecastBeforeTrain(t *testing.T) {
	e := New()
	if _, err := e.Forecast(24); !errors.Is(err, ErrUntrainedModel) {
		t.Fatalf("expected ErrUntrainedModel, got %v", err)
	}
	if _, err := e.Report(); !errors.Is(err, ErrUntrainedModel) {
		t.Fatalf("expected ErrUntrainedModel from Report, got %v", err)
	}
}

func TestForecastRowsAllFamilies(t *testing.T) {
	series := sineSeries(200, 7)
	families := []models.ModelFamily{
		models.FamilyDecomposition,
		models.FamilyRandomForest,
		models.FamilyGradientBoosting,
		models.FamilySequence,
	}
	for _, family := range families {
		e := New()
		report, err := e.Train(series, family, 0.2)
		if err != nil {
			t.Fatalf("family %s: train failed: %v", family, err)
		}
		if report.TrainRecords != 160 || report.TestRecords != 40 {
			t.Fatalf("family %s: unexpected split %d/%d", family, report.TrainRecords, report.TestRecords)
		}

		rows, err := e.Forecast(24)
		if err != nil {
			t.Fatalf("family %s: forecast failed: %v", family, err)
		}
		if len(rows) != 24 {
			t.Fatalf("family %s: expected 24 rows, got %d", family, len(rows))
		}

		trainEnd := series[159].Timestamp
		want := trainEnd.Add(time.Hour)
		for i, row := range rows {
			if !row.Timestamp.Equal(want) {
				t.Fatalf("family %s: row %d timestamp %v, want %v", family, i, row.Timestamp, want)
			}
			want = want.Add(time.Hour)
		}
	}
}

func TestForecastIdempotent(t *testing.T) {
	for _, family := range []models.ModelFamily{models.FamilyDecomposition, models.FamilySequence} {
		e := New()
		if _, err := e.Train(sineSeries(200, 3), family, 0.2); err != nil {
			t.Fatalf("train failed: %v", err)
		}
		first, err := e.Forecast(12)
		if err != nil {
			t.Fatalf("forecast failed: %v", err)
		}
		second, err := e.Forecast(12)
		if err != nil {
			t.Fatalf("forecast failed: %v", err)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("family %s: forecast not idempotent at row %d: %v vs %v", family, i, first[i], second[i])
			}
		}
	}
}

func TestRetrainReplacesModel(t *testing.T) {
	e := New()
	if _, err := e.Train(sineSeries(200, 5), models.FamilyDecomposition, 0.2); err != nil {
		t.Fatalf("first train failed: %v", err)
	}
	if _, err := e.Train(sineSeries(200, 5), models.FamilyRandomForest, 0.2); err != nil {
		t.Fatalf("second train failed: %v", err)
	}
	report, err := e.Report()
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if report.Family != models.FamilyRandomForest {
		t.Fatalf("expected model replaced, still %s", report.Family)
	}
}

func TestDecompositionSineScenario(t *testing.T) {
	e := New()
	report, err := e.Train(sineSeries(200, 11), models.FamilyDecomposition, 0.2)
	if err != nil {
		t.Fatalf("train failed: %v", err)
	}
	if report.Metrics.R2 <= 0.5 {
		t.Fatalf("expected R2 > 0.5 on daily sine, got %v", report.Metrics.R2)
	}

	rows, err := e.Forecast(24)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	if len(rows) != 24 {
		t.Fatalf("expected 24 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Lower > row.Forecast || row.Forecast > row.Upper {
			t.Fatalf("row %d: band violated: %v <= %v <= %v", i, row.Lower, row.Forecast, row.Upper)
		}
		if row.Lower == row.Upper {
			t.Fatalf("row %d: expected non-degenerate band", i)
		}
	}
}

func TestTreeFamiliesPointOnlyBand(t *testing.T) {
	for _, family := range []models.ModelFamily{models.FamilyRandomForest, models.FamilyGradientBoosting} {
		e := New()
		if _, err := e.Train(sineSeries(200, 13), family, 0.2); err != nil {
			t.Fatalf("train failed: %v", err)
		}
		rows, err := e.Forecast(6)
		if err != nil {
			t.Fatalf("forecast failed: %v", err)
		}
		for _, row := range rows {
			if row.Lower != row.Forecast || row.Upper != row.Forecast {
				t.Fatalf("family %s: expected lower=upper=point, got %+v", family, row)
			}
		}
	}
}

func TestTrainSortsUnorderedSeries(t *testing.T) {
	series := sineSeries(200, 17)
	shuffled := append(models.TimeSeries(nil), series...)
	rng := rand.New(rand.NewSource(1))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	e := New()
	if _, err := e.Train(shuffled, models.FamilyDecomposition, 0.2); err != nil {
		t.Fatalf("train failed: %v", err)
	}
	rows, err := e.Forecast(1)
	if err != nil {
		t.Fatalf("forecast failed: %v", err)
	}
	want := series[159].Timestamp.Add(time.Hour)
	if !rows[0].Timestamp.Equal(want) {
		t.Fatalf("expected forecast to start at %v, got %v", want, rows[0].Timestamp)
	}
}
