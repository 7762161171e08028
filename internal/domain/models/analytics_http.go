package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency and reuse.

type TrainRequest struct {
	Indicator    string  `query:"indicator" json:"indicator" default:"price" validate:"oneof=price demand"`
	Family       string  `query:"family" json:"family" default:"decomposition" validate:"oneof=decomposition random_forest gradient_boosting sequence"`
	TestFraction float64 `query:"test_fraction" json:"test_fraction" default:"0.2" validate:"gt=0,lt=1"`
	N            int     `query:"n" json:"n" default:"720" validate:"gte=100,lte=50000"`
}

type ForecastRequest struct {
	Indicator string `query:"indicator" json:"indicator" default:"price" validate:"oneof=price demand"`
	Horizon   int    `query:"horizon" json:"horizon" default:"24" validate:"gte=1,lte=720"`
}

type DetectRequest struct {
	Indicator string   `query:"indicator" json:"indicator" default:"price" validate:"oneof=price demand"`
	Methods   []string `query:"methods" json:"methods" validate:"omitempty,dive,oneof=zscore iqr isolation_forest abrupt_change"`
	N         int      `query:"n" json:"n" default:"1440" validate:"gte=1,lte=100000"`
}

type ModelMetricsRequest struct {
	Indicator string `query:"indicator" json:"indicator" default:"price" validate:"oneof=price demand"`
}
