package engine

import (
	"math"
	"math/rand"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

const (
	seqLookback = 24
	seqHidden   = 32
	seqEpochs   = 50
	seqLearning = 0.01
	seqSeed     = 42
)

// sequenceModel is a small neural network trained on fixed-length lookback
// windows of the min-max normalized series, one step ahead. Multi-step
// forecasting is an autoregressive rollout: each prediction is appended to the
// rolling window and fed back in, so error compounds over the horizon. The
// scaler is fitted on the train split only.
type sequenceModel struct {
	scaler minMaxScaler

	w1 [][]float64 // hidden x lookback
	b1 []float64
	w2 []float64
	b2 float64

	lastWindow []float64 // final lookback train values, normalized
}

func newSequenceModel() *sequenceModel { return &sequenceModel{} }

func (m *sequenceModel) Fit(train models.TimeSeries) error {
	if len(train) <= seqLookback {
		return &InsufficientDataError{Op: "sequence fit", Need: seqLookback + 1, Got: len(train)}
	}

	values := train.Values()
	m.scaler.Fit(values)
	norm := m.scaler.TransformAll(values)

	xs, ys := slidingWindows(norm, seqLookback)

	rng := rand.New(rand.NewSource(seqSeed))
	m.initWeights(rng)

	for epoch := 0; epoch < seqEpochs; epoch++ {
		for i := range xs {
			m.sgdStep(xs[i], ys[i])
		}
	}

	m.lastWindow = make([]float64, seqLookback)
	copy(m.lastWindow, norm[len(norm)-seqLookback:])
	return nil
}

func (m *sequenceModel) Predict(start time.Time, steps int) []models.ForecastRow {
	window := make([]float64, len(m.lastWindow))
	copy(window, m.lastWindow)

	points := make([]float64, steps)
	for i := 0; i < steps; i++ {
		pred := m.forward(window, nil)
		points[i] = m.scaler.Inverse(pred)
		copy(window, window[1:])
		window[len(window)-1] = pred
	}
	return pointRows(start, points)
}

// slidingWindows forms supervised (X, y) pairs: each window of length
// lookback predicts the value immediately after it.
func slidingWindows(data []float64, lookback int) (xs [][]float64, ys []float64) {
	for i := 0; i+lookback < len(data); i++ {
		xs = append(xs, data[i:i+lookback])
		ys = append(ys, data[i+lookback])
	}
	return xs, ys
}

func (m *sequenceModel) initWeights(rng *rand.Rand) {
	scale := 1 / math.Sqrt(seqLookback)
	m.w1 = make([][]float64, seqHidden)
	m.b1 = make([]float64, seqHidden)
	m.w2 = make([]float64, seqHidden)
	for h := 0; h < seqHidden; h++ {
		m.w1[h] = make([]float64, seqLookback)
		for j := 0; j < seqLookback; j++ {
			m.w1[h][j] = (rng.Float64()*2 - 1) * scale
		}
		m.w2[h] = (rng.Float64()*2 - 1) * scale
	}
	m.b2 = 0
}

// forward computes the prediction; when hidden is non-nil the activations are
// written into it for the backward pass.
func (m *sequenceModel) forward(x []float64, hidden []float64) float64 {
	out := m.b2
	for h := 0; h < seqHidden; h++ {
		z := m.b1[h]
		for j := 0; j < seqLookback; j++ {
			z += m.w1[h][j] * x[j]
		}
		a := math.Tanh(z)
		if hidden != nil {
			hidden[h] = a
		}
		out += m.w2[h] * a
	}
	return out
}

// sgdStep runs one forward/backward pass on a single window, minimizing
// squared error.
func (m *sequenceModel) sgdStep(x []float64, y float64) {
	hidden := make([]float64, seqHidden)
	pred := m.forward(x, hidden)
	errGrad := pred - y

	for h := 0; h < seqHidden; h++ {
		a := hidden[h]
		gradW2 := errGrad * a
		// d tanh = 1 - a^2
		delta := errGrad * m.w2[h] * (1 - a*a)
		m.w2[h] -= seqLearning * gradW2
		m.b1[h] -= seqLearning * delta
		for j := 0; j < seqLookback; j++ {
			m.w1[h][j] -= seqLearning * delta * x[j]
		}
	}
	m.b2 -= seqLearning * errGrad
}
