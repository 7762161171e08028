package engine

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// detector scans a full, chronologically sorted series and returns candidate
// anomaly records tagged with its own method. Detectors never mutate the
// input.
type detector interface {
	Method() models.DetectorMethod
	Detect(series models.TimeSeries) ([]models.AnomalyRecord, error)
}

// zscoreDetector flags points whose distance from the series mean exceeds
// threshold standard deviations.
type zscoreDetector struct {
	threshold float64
}

func (d *zscoreDetector) Method() models.DetectorMethod { return models.MethodZScore }

func (d *zscoreDetector) Detect(series models.TimeSeries) ([]models.AnomalyRecord, error) {
	values := series.Values()
	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return nil, nil
	}

	var out []models.AnomalyRecord
	for _, p := range series {
		z := math.Abs(p.Value-mean) / std
		if z <= d.threshold {
			continue
		}
		kind := models.KindDrop
		if p.Value > mean {
			kind = models.KindSpike
		}
		out = append(out, models.AnomalyRecord{
			Timestamp: p.Timestamp,
			Value:     p.Value,
			Kind:      kind,
			Severity:  zscoreSeverity(z),
			Method:    models.MethodZScore,
			Score:     z,
		})
	}
	return out, nil
}

func zscoreSeverity(z float64) models.Severity {
	switch {
	case z > 4:
		return models.SeverityCritical
	case z > 3.5:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

// iqrDetector flags points outside the Tukey fences Q1-1.5*IQR, Q3+1.5*IQR.
type iqrDetector struct{}

func (d *iqrDetector) Method() models.DetectorMethod { return models.MethodIQR }

func (d *iqrDetector) Detect(series models.TimeSeries) ([]models.AnomalyRecord, error) {
	if len(series) == 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), series.Values()...)
	sort.Float64s(sorted)

	q1 := quantileLinear(sorted, 0.25)
	q3 := quantileLinear(sorted, 0.75)
	median := quantileLinear(sorted, 0.5)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var out []models.AnomalyRecord
	for _, p := range series {
		if p.Value >= lower && p.Value <= upper {
			continue
		}
		severity := models.SeverityHigh
		if p.Value < q1-3*iqr || p.Value > q3+3*iqr {
			severity = models.SeverityCritical
		}
		kind := models.KindSpike
		if p.Value < lower {
			kind = models.KindDrop
		}
		score := math.Abs(p.Value - median)
		if iqr > 0 {
			score /= iqr
		}
		out = append(out, models.AnomalyRecord{
			Timestamp: p.Timestamp,
			Value:     p.Value,
			Kind:      kind,
			Severity:  severity,
			Method:    models.MethodIQR,
			Score:     score,
		})
	}
	return out, nil
}

// quantileLinear interpolates like pandas' default quantile. Input must be
// sorted ascending.
func quantileLinear(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// abruptChangeDetector flags jumps between consecutive values larger than
// twice the standard deviation of all first differences.
type abruptChangeDetector struct{}

func (d *abruptChangeDetector) Method() models.DetectorMethod { return models.MethodAbruptChange }

func (d *abruptChangeDetector) Detect(series models.TimeSeries) ([]models.AnomalyRecord, error) {
	if len(series) < 3 {
		return nil, nil
	}
	diffs := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		diffs[i-1] = math.Abs(series[i].Value - series[i-1].Value)
	}
	threshold := 2 * stat.StdDev(diffs, nil)
	if threshold == 0 || math.IsNaN(threshold) {
		return nil, nil
	}

	var out []models.AnomalyRecord
	for i := 1; i < len(series); i++ {
		diff := diffs[i-1]
		if diff <= threshold {
			continue
		}
		severity := models.SeverityHigh
		if diff > 2*threshold {
			severity = models.SeverityCritical
		}
		out = append(out, models.AnomalyRecord{
			Timestamp: series[i].Timestamp,
			Value:     series[i].Value,
			Kind:      models.KindAbruptChange,
			Severity:  severity,
			Method:    models.MethodAbruptChange,
			Score:     diff / threshold,
		})
	}
	return out, nil
}
