package engine

import (
	"errors"
	"fmt"
)

// ErrUntrainedModel is returned when a forecast is requested before Train.
var ErrUntrainedModel = errors.New("model has not been trained; call Train first")

// InsufficientDataError reports a series too short for the requested
// operation. Training needs 100 observations; the isolation-forest detector
// needs 10.
type InsufficientDataError struct {
	Op   string
	Need int
	Got  int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s requires at least %d observations, got %d", e.Op, e.Need, e.Got)
}

// InvalidConfigurationError reports an unknown model family, detector name or
// out-of-range parameter.
type InvalidConfigurationError struct {
	Field string
	Value string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// DegenerateMetricError reports a metric that cannot be computed from the
// given inputs (e.g. MAPE when every actual value is zero).
type DegenerateMetricError struct {
	Metric string
	Reason string
}

func (e *DegenerateMetricError) Error() string {
	return fmt.Sprintf("metric %s is degenerate: %s", e.Metric, e.Reason)
}
