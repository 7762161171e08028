package engine

// minMaxScaler maps values to [0,1] using the range observed at fit time.
// It must be fitted on train data only so test information never leaks into
// the sequence model's inputs.
type minMaxScaler struct {
	min    float64
	max    float64
	fitted bool
}

func (s *minMaxScaler) Fit(values []float64) {
	if len(values) == 0 {
		return
	}
	s.min, s.max = values[0], values[0]
	for _, v := range values[1:] {
		if v < s.min {
			s.min = v
		}
		if v > s.max {
			s.max = v
		}
	}
	s.fitted = true
}

func (s *minMaxScaler) Transform(v float64) float64 {
	if !s.fitted || s.max == s.min {
		return 0
	}
	return (v - s.min) / (s.max - s.min)
}

func (s *minMaxScaler) Inverse(v float64) float64 {
	if !s.fitted {
		return v
	}
	return v*(s.max-s.min) + s.min
}

func (s *minMaxScaler) TransformAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.Transform(v)
	}
	return out
}
