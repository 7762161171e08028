package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	pkgch "github.com/sablalpz/GreenEnergy-Insights/pkg/clickhouse"
	applogger "github.com/sablalpz/GreenEnergy-Insights/pkg/logger"
)

// CHReadingStore implements ReadingStore and ResultStore backed by ClickHouse.
// It serves the analytics layer: clean chronological series out, forecasts and
// anomalies back in.
type CHReadingStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHReadingStore(ch *pkgch.Client, database string) *CHReadingStore {
	return &CHReadingStore{db: ch.DB(), database: database}
}

// SetLogger injects a structured logger.
func (s *CHReadingStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *CHReadingStore) readingsTable() string  { return s.database + ".meter_readings" }
func (s *CHReadingStore) forecastsTable() string { return s.database + ".forecasts" }
func (s *CHReadingStore) anomaliesTable() string { return s.database + ".anomalies" }

// GetSeries returns the stored series for an indicator within [from, to],
// sorted ascending with non-finite values filtered out.
func (s *CHReadingStore) GetSeries(ctx context.Context, indicator models.Indicator, from, to time.Time) (models.TimeSeries, error) {
	start := time.Now()
	const qtpl = `
        SELECT ts, value
        FROM %s
        WHERE indicator = ? AND ts >= ? AND ts <= ?
        ORDER BY ts ASC
    `
	q := fmt.Sprintf(qtpl, s.readingsTable())
	rows, err := s.db.QueryContext(ctx, q, string(indicator), from, to)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse get_series query error",
				applogger.String("indicator", string(indicator)),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get series: %w", err)
	}
	defer rows.Close()

	out := make(models.TimeSeries, 0, 1024)
	if err := scanSeries(rows, &out); err != nil {
		return nil, err
	}
	if s.l != nil {
		s.l.Info("clickhouse get_series ok",
			applogger.String("indicator", string(indicator)),
			applogger.Int("rows", len(out)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return out, nil
}

// GetLatestN returns the most recent n points, sorted ascending.
func (s *CHReadingStore) GetLatestN(ctx context.Context, indicator models.Indicator, n int) (models.TimeSeries, error) {
	start := time.Now()
	const qtpl = `
        SELECT ts, value
        FROM %s
        WHERE indicator = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	q := fmt.Sprintf(qtpl, s.readingsTable())
	rows, err := s.db.QueryContext(ctx, q, string(indicator), n)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse latest_series query error",
				applogger.String("indicator", string(indicator)),
				applogger.Int("limit", n),
				applogger.Error(err),
			)
		}
		return nil, fmt.Errorf("get latest series: %w", err)
	}
	defer rows.Close()

	tmp := make(models.TimeSeries, 0, n)
	if err := scanSeries(rows, &tmp); err != nil {
		return nil, err
	}
	// reverse to ASC
	for i, j := 0, len(tmp)-1; i < j; i, j = i+1, j-1 {
		tmp[i], tmp[j] = tmp[j], tmp[i]
	}
	if s.l != nil {
		s.l.Info("clickhouse latest_series ok",
			applogger.String("indicator", string(indicator)),
			applogger.Int("limit", n),
			applogger.Int("rows", len(tmp)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return tmp, nil
}

func scanSeries(rows *sql.Rows, out *models.TimeSeries) error {
	for rows.Next() {
		var p models.Point
		if err := rows.Scan(&p.Timestamp, &p.Value); err != nil {
			return fmt.Errorf("scan point: %w", err)
		}
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		*out = append(*out, p)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows: %w", err)
	}
	return nil
}

// SaveForecasts persists one forecast run.
func (s *CHReadingStore) SaveForecasts(ctx context.Context, indicator models.Indicator, family models.ModelFamily, rows []models.ForecastRow) error {
	if len(rows) == 0 {
		return nil
	}
	generatedAt := time.Now().UTC()
	values := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*7)
	for _, row := range rows {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			row.Timestamp,
			string(indicator),
			string(family),
			row.Forecast,
			row.Lower,
			row.Upper,
			generatedAt,
		)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (ts, indicator, family, forecast, lower, upper, generated_at) VALUES %s",
		s.forecastsTable(), strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save forecasts: %w", err)
	}
	return nil
}

// SaveAnomalies persists one detection run.
func (s *CHReadingStore) SaveAnomalies(ctx context.Context, indicator models.Indicator, records []models.AnomalyRecord) error {
	if len(records) == 0 {
		return nil
	}
	detectedAt := time.Now().UTC()
	values := make([]string, 0, len(records))
	args := make([]interface{}, 0, len(records)*8)
	for _, rec := range records {
		values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			rec.Timestamp,
			string(indicator),
			rec.Value,
			string(rec.Kind),
			string(rec.Severity),
			string(rec.Method),
			rec.Score,
			detectedAt,
		)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (ts, indicator, value, kind, severity, method, score, detected_at) VALUES %s",
		s.anomaliesTable(), strings.Join(values, ","),
	)
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("save anomalies: %w", err)
	}
	return nil
}
