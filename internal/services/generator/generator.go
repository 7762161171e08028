// Package generator produces synthetic hourly price and demand series for
// seeding and tests: a daily sinusoid over a flat base with peak/valley hour
// adjustments, weekday/weekend modulation and Gaussian noise.
package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// Config controls the synthetic series shape.
type Config struct {
	Base      float64 // mean level
	Amplitude float64 // daily sinusoid amplitude
	NoiseStd  float64 // gaussian noise sigma
	Seed      int64
}

// DefaultPriceConfig mimics a day-ahead price profile in EUR/MWh.
func DefaultPriceConfig() Config {
	return Config{Base: 100, Amplitude: 20, NoiseStd: 5, Seed: 42}
}

// Generator builds reproducible synthetic series.
type Generator struct {
	cfg Config
	rng *rand.Rand
}

func New(cfg Config) *Generator {
	return &Generator{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

// HourlySeries generates n hourly points starting at start, following
// base + amplitude*sin(2*pi*hour/24) with weekend damping and noise.
func (g *Generator) HourlySeries(start time.Time, n int) models.TimeSeries {
	series := make(models.TimeSeries, n)
	ts := start
	for i := 0; i < n; i++ {
		value := g.cfg.Base + g.cfg.Amplitude*math.Sin(2*math.Pi*float64(ts.Hour())/24)
		if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
			value -= 10
		} else {
			value += 5
		}
		value += g.rng.NormFloat64() * g.cfg.NoiseStd
		series[i] = models.Point{Timestamp: ts, Value: value}
		ts = ts.Add(time.Hour)
	}
	return series
}

// Readings generates paired price and demand readings for n hours. Demand is
// positively correlated with price plus independent noise, and both are kept
// above a physical floor.
func (g *Generator) Readings(start time.Time, n int) []models.MeterReading {
	prices := g.HourlySeries(start, n)
	out := make([]models.MeterReading, 0, 2*n)
	for _, p := range prices {
		price := math.Max(p.Value, 10)
		demand := math.Max(85+(price-g.cfg.Base)*0.15+g.rng.NormFloat64()*5, 30)
		out = append(out,
			models.MeterReading{Timestamp: p.Timestamp, Indicator: models.IndicatorPrice, Value: price, Source: "synthetic"},
			models.MeterReading{Timestamp: p.Timestamp, Indicator: models.IndicatorDemand, Value: demand, Source: "synthetic"},
		)
	}
	return out
}

// WithSpike returns a copy of series with the point at index i offset by
// delta. Useful for injecting known anomalies.
func WithSpike(series models.TimeSeries, i int, delta float64) models.TimeSeries {
	out := append(models.TimeSeries(nil), series...)
	out[i].Value += delta
	return out
}
