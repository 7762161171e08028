package engine

import (
	"testing"
	"time"
)

func TestCalendarFeatures(t *testing.T) {
	// Wednesday 2024-07-17 14:00 UTC.
	ts := time.Date(2024, 7, 17, 14, 0, 0, 0, time.UTC)
	f := CalendarFeatures(ts)

	if len(f) != numCalendarFeatures {
		t.Fatalf("expected %d features, got %d", numCalendarFeatures, len(f))
	}
	if f[featHour] != 14 {
		t.Fatalf("hour: got %v", f[featHour])
	}
	if f[featWeekday] != 2 {
		t.Fatalf("weekday (Monday=0): got %v", f[featWeekday])
	}
	if f[featMonth] != 7 {
		t.Fatalf("month: got %v", f[featMonth])
	}
	if f[featDayOfMonth] != 17 {
		t.Fatalf("day of month: got %v", f[featDayOfMonth])
	}
	if f[featWeekend] != 0 {
		t.Fatalf("wednesday is not a weekend")
	}
}

func TestCalendarFeaturesWeekend(t *testing.T) {
	saturday := time.Date(2024, 7, 20, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 7, 21, 9, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 7, 22, 9, 0, 0, 0, time.UTC)

	if CalendarFeatures(saturday)[featWeekend] != 1 {
		t.Fatalf("saturday should be weekend")
	}
	if CalendarFeatures(sunday)[featWeekend] != 1 {
		t.Fatalf("sunday should be weekend")
	}
	if CalendarFeatures(monday)[featWeekend] != 0 {
		t.Fatalf("monday should not be weekend")
	}
}

func TestScalerRoundTrip(t *testing.T) {
	var s minMaxScaler
	values := []float64{10, 20, 30, 40}
	s.Fit(values)

	for _, v := range values {
		norm := s.Transform(v)
		if norm < 0 || norm > 1 {
			t.Fatalf("normalized value out of [0,1]: %v", norm)
		}
		if got := s.Inverse(norm); got != v {
			t.Fatalf("round trip: got %v, want %v", got, v)
		}
	}
}

func TestSlidingWindows(t *testing.T) {
	data := make([]float64, 30)
	for i := range data {
		data[i] = float64(i)
	}
	xs, ys := slidingWindows(data, 24)
	if len(xs) != 6 || len(ys) != 6 {
		t.Fatalf("expected 6 windows, got %d/%d", len(xs), len(ys))
	}
	if ys[0] != 24 {
		t.Fatalf("first target should be the value after the window, got %v", ys[0])
	}
	if xs[0][0] != 0 || xs[0][23] != 23 {
		t.Fatalf("unexpected first window bounds: %v..%v", xs[0][0], xs[0][23])
	}
}
