package engine

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

const (
	dailyPeriodHours  = 24
	weeklyPeriodHours = 168
	dailyHarmonics    = 4
	weeklyHarmonics   = 3

	// intervalWidth is the coverage of the confidence band.
	intervalWidth = 0.80
)

// decompositionModel is an additive trend + seasonality forecaster: a linear
// trend plus Fourier terms for the daily and weekly cycles, fitted jointly by
// least squares. The residual spread on the train split drives the confidence
// band, so this is the only family with native uncertainty.
type decompositionModel struct {
	origin      time.Time // t=0 reference for the trend regressor
	coeffs      []float64
	residualStd float64
	fitted      bool
}

func newDecompositionModel() *decompositionModel { return &decompositionModel{} }

func (m *decompositionModel) Fit(train models.TimeSeries) error {
	n := len(train)
	cols := 2 + 2*dailyHarmonics + 2*weeklyHarmonics
	if n <= cols {
		return &InsufficientDataError{Op: "decomposition fit", Need: cols + 1, Got: n}
	}
	m.origin = train[0].Timestamp

	x := mat.NewDense(n, cols, nil)
	y := mat.NewVecDense(n, nil)
	for i, p := range train {
		x.SetRow(i, m.designRow(p.Timestamp))
		y.SetVec(i, p.Value)
	}

	var qr mat.QR
	qr.Factorize(x)
	beta := mat.NewDense(cols, 1, nil)
	if err := qr.SolveTo(beta, false, y); err != nil {
		return fmt.Errorf("decomposition solve: %w", err)
	}
	m.coeffs = make([]float64, cols)
	for j := 0; j < cols; j++ {
		m.coeffs[j] = beta.At(j, 0)
	}

	residuals := make([]float64, n)
	for i, p := range train {
		residuals[i] = p.Value - m.eval(p.Timestamp)
	}
	m.residualStd = stat.StdDev(residuals, nil)
	m.fitted = true
	return nil
}

func (m *decompositionModel) Predict(start time.Time, steps int) []models.ForecastRow {
	z := distuv.UnitNormal.Quantile(0.5 + intervalWidth/2)
	band := z * m.residualStd

	rows := make([]models.ForecastRow, steps)
	ts := start
	for i := 0; i < steps; i++ {
		point := m.eval(ts)
		rows[i] = models.ForecastRow{
			Timestamp: ts,
			Forecast:  point,
			Lower:     point - band,
			Upper:     point + band,
		}
		ts = ts.Add(time.Hour)
	}
	return rows
}

// designRow builds the regression row for one timestamp: intercept, linear
// trend in hours since origin, then sin/cos pairs for each harmonic of the
// daily and weekly periods.
func (m *decompositionModel) designRow(ts time.Time) []float64 {
	t := ts.Sub(m.origin).Hours()
	row := make([]float64, 0, 2+2*dailyHarmonics+2*weeklyHarmonics)
	row = append(row, 1, t)
	for k := 1; k <= dailyHarmonics; k++ {
		w := 2 * math.Pi * float64(k) * t / dailyPeriodHours
		row = append(row, math.Sin(w), math.Cos(w))
	}
	for k := 1; k <= weeklyHarmonics; k++ {
		w := 2 * math.Pi * float64(k) * t / weeklyPeriodHours
		row = append(row, math.Sin(w), math.Cos(w))
	}
	return row
}

func (m *decompositionModel) eval(ts time.Time) float64 {
	row := m.designRow(ts)
	sum := 0.0
	for j, v := range row {
		sum += v * m.coeffs[j]
	}
	return sum
}
