package engine

import (
	"math"
	"math/rand"
	"sort"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

const (
	iforestTrees      = 100
	iforestSampleSize = 256
	iforestSeed       = 42
	iforestMinPoints  = 10

	// iforestContamination is the prior fraction of anomalous points. It is
	// an explicit assumption, not learned from data.
	iforestContamination = 0.1
)

// isolationForestDetector scores each value by how quickly random splits
// isolate it; short average path lengths mean anomalies. The contamination
// prior sets the score cutoff: the top 10% of scores are flagged.
type isolationForestDetector struct{}

func (d *isolationForestDetector) Method() models.DetectorMethod {
	return models.MethodIsolationForest
}

func (d *isolationForestDetector) Detect(series models.TimeSeries) ([]models.AnomalyRecord, error) {
	if len(series) < iforestMinPoints {
		return nil, nil
	}
	values := series.Values()

	rng := rand.New(rand.NewSource(iforestSeed))
	sample := len(values)
	if sample > iforestSampleSize {
		sample = iforestSampleSize
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sample))))

	trees := make([]*isoNode, iforestTrees)
	for t := range trees {
		sub := make([]float64, sample)
		for i := range sub {
			sub[i] = values[rng.Intn(len(values))]
		}
		trees[t] = growIsoTree(sub, 0, maxDepth, rng)
	}

	norm := avgPathLength(float64(sample))
	scores := make([]float64, len(values))
	for i, v := range values {
		sum := 0.0
		for _, tree := range trees {
			sum += pathLength(tree, v, 0)
		}
		scores[i] = math.Pow(2, -(sum/float64(iforestTrees))/norm)
	}

	cutoff := scoreCutoff(scores, iforestContamination)

	var out []models.AnomalyRecord
	for i, p := range series {
		if scores[i] <= cutoff {
			continue
		}
		out = append(out, models.AnomalyRecord{
			Timestamp: p.Timestamp,
			Value:     p.Value,
			Kind:      models.KindAnomalousPattern,
			Severity:  iforestSeverity(scores[i]),
			Method:    models.MethodIsolationForest,
			Score:     scores[i],
		})
	}
	return out, nil
}

func iforestSeverity(score float64) models.Severity {
	switch {
	case score > 0.7:
		return models.SeverityCritical
	case score > 0.5:
		return models.SeverityHigh
	default:
		return models.SeverityMedium
	}
}

type isoNode struct {
	leaf  bool
	size  int
	split float64
	left  *isoNode
	right *isoNode
}

func growIsoTree(values []float64, depth, maxDepth int, rng *rand.Rand) *isoNode {
	lo, hi := minMax(values)
	if depth >= maxDepth || len(values) <= 1 || lo == hi {
		return &isoNode{leaf: true, size: len(values)}
	}
	split := lo + rng.Float64()*(hi-lo)
	var left, right []float64
	for _, v := range values {
		if v < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &isoNode{leaf: true, size: len(values)}
	}
	return &isoNode{
		split: split,
		left:  growIsoTree(left, depth+1, maxDepth, rng),
		right: growIsoTree(right, depth+1, maxDepth, rng),
	}
}

func pathLength(node *isoNode, v float64, depth int) float64 {
	if node.leaf {
		return float64(depth) + avgPathLength(float64(node.size))
	}
	if v < node.split {
		return pathLength(node.left, v, depth+1)
	}
	return pathLength(node.right, v, depth+1)
}

// avgPathLength is the expected path length of an unsuccessful BST search,
// the standard normalization term c(n) from the isolation forest paper.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	harmonic := math.Log(n-1) + 0.5772156649
	return 2*harmonic - 2*(n-1)/n
}

// scoreCutoff returns the score threshold: points scoring strictly above the
// 1-contamination quantile are flagged, so roughly the contamination fraction
// of points comes out anomalous.
func scoreCutoff(scores []float64, contamination float64) float64 {
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	return quantileLinear(sorted, 1-contamination)
}

func minMax(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
