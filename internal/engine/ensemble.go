package engine

import (
	"sort"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// newDetector builds the implementation for a detector name.
func newDetector(method models.DetectorMethod, threshold float64) (detector, error) {
	switch method {
	case models.MethodZScore:
		return &zscoreDetector{threshold: threshold}, nil
	case models.MethodIQR:
		return &iqrDetector{}, nil
	case models.MethodIsolationForest:
		return &isolationForestDetector{}, nil
	case models.MethodAbruptChange:
		return &abruptChangeDetector{}, nil
	default:
		return nil, &InvalidConfigurationError{Field: "detector method", Value: string(method)}
	}
}

// runEnsemble executes each requested detector independently over the full
// series, then merges: outputs are concatenated in the requested method order
// and deduplicated by timestamp keeping the first occurrence. A point flagged
// by two methods is therefore attributed to whichever method was requested
// first; corroborating signals are dropped. Result is sorted by timestamp.
func runEnsemble(series models.TimeSeries, methods []models.DetectorMethod, threshold float64) ([]models.AnomalyRecord, error) {
	sorted := append(models.TimeSeries(nil), series...)
	sorted.SortByTime()

	var merged []models.AnomalyRecord
	seen := make(map[time.Time]struct{})
	for _, method := range methods {
		det, err := newDetector(method, threshold)
		if err != nil {
			return nil, err
		}
		records, err := det.Detect(sorted)
		if err != nil {
			return nil, err
		}
		for _, rec := range records {
			if _, dup := seen[rec.Timestamp]; dup {
				continue
			}
			seen[rec.Timestamp] = struct{}{}
			merged = append(merged, rec)
		}
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged, nil
}
