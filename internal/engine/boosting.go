package engine

import (
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

const (
	boostStages       = 100
	boostMaxDepth     = 5
	boostLearningRate = 0.1
)

// gradientBoosting fits shallow regression trees stagewise on the residuals
// of the running prediction, shrunk by the learning rate. Fully deterministic:
// no bootstrap, no feature sampling. Point forecasts only.
type gradientBoosting struct {
	base   float64
	stages []*regressionTree
}

func newGradientBoosting() *gradientBoosting { return &gradientBoosting{} }

func (g *gradientBoosting) Fit(train models.TimeSeries) error {
	if len(train) == 0 {
		return &InsufficientDataError{Op: "gradient boosting fit", Need: 1, Got: 0}
	}
	x := make([][]float64, len(train))
	residual := make([]float64, len(train))
	sum := 0.0
	for i, p := range train {
		x[i] = CalendarFeatures(p.Timestamp)
		residual[i] = p.Value
		sum += p.Value
	}
	g.base = sum / float64(len(train))
	for i := range residual {
		residual[i] -= g.base
	}

	g.stages = make([]*regressionTree, boostStages)
	for s := 0; s < boostStages; s++ {
		tree := &regressionTree{maxDepth: boostMaxDepth, minLeafSize: 1}
		tree.Fit(x, residual, nil, nil)
		for i := range residual {
			residual[i] -= boostLearningRate * tree.Predict(x[i])
		}
		g.stages[s] = tree
	}
	return nil
}

func (g *gradientBoosting) predictOne(sample []float64) float64 {
	pred := g.base
	for _, tree := range g.stages {
		pred += boostLearningRate * tree.Predict(sample)
	}
	return pred
}

func (g *gradientBoosting) Predict(start time.Time, steps int) []models.ForecastRow {
	points := make([]float64, steps)
	ts := start
	for i := 0; i < steps; i++ {
		points[i] = g.predictOne(CalendarFeatures(ts))
		ts = ts.Add(time.Hour)
	}
	return pointRows(start, points)
}
