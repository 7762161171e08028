package models

import (
	"sort"
	"time"
)

// Point is one observation of a time series.
type Point struct {
	Timestamp time.Time
	Value     float64
}

// TimeSeries is an ordered sequence of observations. Callers are expected to
// filter out null/NaN values before handing a series to the engine; timestamps
// must be unique.
type TimeSeries []Point

// SortByTime sorts the series chronologically in place.
func (ts TimeSeries) SortByTime() {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Timestamp.Before(ts[j].Timestamp) })
}

// Values returns the value column as a slice.
func (ts TimeSeries) Values() []float64 {
	out := make([]float64, len(ts))
	for i, p := range ts {
		out[i] = p.Value
	}
	return out
}

// LastTimestamp returns the timestamp of the final point, or zero time for an
// empty series.
func (ts TimeSeries) LastTimestamp() time.Time {
	if len(ts) == 0 {
		return time.Time{}
	}
	return ts[len(ts)-1].Timestamp
}

// SplitChronological partitions the series into train and test without
// shuffling: the first 1-testFraction of points become train, the remainder
// test. Shuffling a time series before splitting would leak future
// observations into training.
func (ts TimeSeries) SplitChronological(testFraction float64) (train, test TimeSeries) {
	splitIdx := int(float64(len(ts)) * (1 - testFraction))
	return ts[:splitIdx], ts[splitIdx:]
}
