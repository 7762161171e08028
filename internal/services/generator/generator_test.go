package generator

import (
	"testing"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

func TestHourlySeriesShape(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := New(DefaultPriceConfig()).HourlySeries(start, 168)

	if len(series) != 168 {
		t.Fatalf("expected 168 points, got %d", len(series))
	}
	for i := 1; i < len(series); i++ {
		if series[i].Timestamp.Sub(series[i-1].Timestamp) != time.Hour {
			t.Fatalf("cadence broken at index %d", i)
		}
	}
}

func TestHourlySeriesReproducible(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	a := New(DefaultPriceConfig()).HourlySeries(start, 48)
	b := New(DefaultPriceConfig()).HourlySeries(start, 48)

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed should reproduce the series, diverged at %d", i)
		}
	}
}

func TestReadingsPairedAndPositive(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	readings := New(DefaultPriceConfig()).Readings(start, 24)

	if len(readings) != 48 {
		t.Fatalf("expected price+demand pair per hour, got %d readings", len(readings))
	}
	for _, r := range readings {
		if r.Value <= 0 {
			t.Fatalf("reading %s at %v not positive: %v", r.Indicator, r.Timestamp, r.Value)
		}
		if !models.IsValidIndicator(r.Indicator) {
			t.Fatalf("invalid indicator %q", r.Indicator)
		}
	}
}

func TestWithSpike(t *testing.T) {
	start := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	series := New(DefaultPriceConfig()).HourlySeries(start, 24)
	spiked := WithSpike(series, 10, 500)

	if spiked[10].Value != series[10].Value+500 {
		t.Fatalf("spike not applied")
	}
	if series[10].Value == spiked[10].Value {
		t.Fatalf("original series mutated")
	}
}
