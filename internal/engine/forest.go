package engine

import (
	"math/rand"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

const (
	forestTrees    = 100
	forestMaxDepth = 20
	forestSeed     = 42
)

// randomForest averages bootstrap-trained regression trees over calendar
// features. Trees are seeded deterministically so refitting the same split
// reproduces the same model. Point forecasts only.
type randomForest struct {
	trees []*regressionTree
}

func newRandomForest() *randomForest { return &randomForest{} }

func (f *randomForest) Fit(train models.TimeSeries) error {
	if len(train) == 0 {
		return &InsufficientDataError{Op: "random forest fit", Need: 1, Got: 0}
	}
	x := make([][]float64, len(train))
	y := make([]float64, len(train))
	for i, p := range train {
		x[i] = CalendarFeatures(p.Timestamp)
		y[i] = p.Value
	}

	f.trees = make([]*regressionTree, forestTrees)
	for t := 0; t < forestTrees; t++ {
		rng := rand.New(rand.NewSource(forestSeed + int64(t)))
		idx := make([]int, len(y))
		for i := range idx {
			idx[i] = rng.Intn(len(y))
		}
		tree := &regressionTree{maxDepth: forestMaxDepth, minLeafSize: 1}
		tree.Fit(x, y, idx, rng)
		f.trees[t] = tree
	}
	return nil
}

func (f *randomForest) Predict(start time.Time, steps int) []models.ForecastRow {
	points := make([]float64, steps)
	ts := start
	for i := 0; i < steps; i++ {
		sample := CalendarFeatures(ts)
		sum := 0.0
		for _, tree := range f.trees {
			sum += tree.Predict(sample)
		}
		points[i] = sum / float64(len(f.trees))
		ts = ts.Add(time.Hour)
	}
	return pointRows(start, points)
}
