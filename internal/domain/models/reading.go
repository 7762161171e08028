package models

import "time"

// Indicator identifies which grid signal a reading belongs to.
type Indicator string

const (
	IndicatorPrice  Indicator = "price"  // spot price, EUR/MWh
	IndicatorDemand Indicator = "demand" // real demand, MW
)

// MeterReading is a single ingested observation from the grid feed.
type MeterReading struct {
	Timestamp time.Time
	Indicator Indicator
	Value     float64
	Source    string // "esios", "websocket", "synthetic"
}

// IsValidIndicator returns true if the indicator is supported.
func IsValidIndicator(ind Indicator) bool {
	switch ind {
	case IndicatorPrice, IndicatorDemand:
		return true
	default:
		return false
	}
}

// DefaultIndicator returns the indicator used when none is requested.
func DefaultIndicator() Indicator { return IndicatorPrice }

// NormalizeIndicator converts a raw string to a valid indicator (or default).
func NormalizeIndicator(s string) Indicator {
	if s == "" {
		return DefaultIndicator()
	}
	ind := Indicator(s)
	if IsValidIndicator(ind) {
		return ind
	}
	return DefaultIndicator()
}
