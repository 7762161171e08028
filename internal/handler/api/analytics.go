package api

import (
	"errors"
	"net/http"
	"time"

	models "github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	domsvc "github.com/sablalpz/GreenEnergy-Insights/internal/domain/service"
	"github.com/sablalpz/GreenEnergy-Insights/internal/engine"
	"github.com/sablalpz/GreenEnergy-Insights/internal/service/metrics"
	"github.com/sablalpz/GreenEnergy-Insights/internal/service/ratelimit"
	xhttp "github.com/sablalpz/GreenEnergy-Insights/pkg/http"
	xlogger "github.com/sablalpz/GreenEnergy-Insights/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandler exposes the forecasting and anomaly endpoints over Echo.
type AnalyticsHandler struct {
	logger    *xlogger.Logger
	analytics domsvc.Analytics
	rl        *ratelimit.Limiter
}

func NewAnalyticsHandler(logger *xlogger.Logger, analytics domsvc.Analytics) *AnalyticsHandler {
	metrics.Register()
	return &AnalyticsHandler{logger: logger, analytics: analytics, rl: ratelimit.New()}
}

func (h *AnalyticsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	g := e.Group("/api/v1")
	g.POST("/train", h.Train)
	g.GET("/forecast", h.Forecast)
	g.POST("/anomalies/detect", h.Detect)
	g.GET("/metrics", h.ModelMetrics)
}

func (h *AnalyticsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AnalyticsHandler) Train(c echo.Context) error {
	start := time.Now()
	endpoint := "train"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.TrainRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":train", 2, 0.5) {
		h.logger.Warn("train rate_limited", xlogger.String("remote", c.RealIP()))
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	report, err := h.analytics.Train(c.Request().Context(),
		models.Indicator(req.Indicator), models.ModelFamily(req.Family), req.TestFraction, req.N)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("train usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *AnalyticsHandler) Forecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.analytics.Forecast(c.Request().Context(), models.Indicator(req.Indicator), req.Horizon)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("forecast usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, rows)
}

func (h *AnalyticsHandler) Detect(c echo.Context) error {
	start := time.Now()
	endpoint := "anomaly"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DetectRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":anom", 3, 1) {
		h.logger.Warn("anomaly rate_limited", xlogger.String("remote", c.RealIP()))
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limited")
	}

	methods := make([]models.DetectorMethod, 0, len(req.Methods))
	for _, m := range req.Methods {
		methods = append(methods, models.DetectorMethod(m))
	}

	records, err := h.analytics.Detect(c.Request().Context(), models.Indicator(req.Indicator), methods, req.N)
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("anomaly usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, records)
}

// ModelMetrics returns the holdout accuracy of the last trained model.
func (h *AnalyticsHandler) ModelMetrics(c echo.Context) error {
	start := time.Now()
	endpoint := "model_metrics"
	defer func() { metrics.AnalyticsLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ModelMetricsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.analytics.Report(c.Request().Context(), models.Indicator(req.Indicator))
	if err != nil {
		metrics.AnalyticsErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("model metrics usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, mapEngineError(err))
	}
	return xhttp.SuccessResponse(c, report)
}

// mapEngineError translates engine failures into API errors with proper status
// codes so clients can distinguish bad input from missing models.
func mapEngineError(err error) error {
	var insufficient *engine.InsufficientDataError
	var invalid *engine.InvalidConfigurationError

	switch {
	case errors.Is(err, engine.ErrUntrainedModel):
		return xhttp.NewAppError("model_not_trained", "", "train a model before requesting results", http.StatusConflict).WithError(err)
	case errors.As(err, &insufficient):
		return xhttp.NewAppError("insufficient_data", "", insufficient.Error(), http.StatusUnprocessableEntity).WithError(err)
	case errors.As(err, &invalid):
		return xhttp.NewAppError("invalid_configuration", invalid.Field, invalid.Error(), http.StatusBadRequest).WithError(err)
	default:
		return xhttp.InternalError("analytics failure").WithError(err)
	}
}
