package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/repository"
	pkgkafka "github.com/sablalpz/GreenEnergy-Insights/pkg/kafka"
)

// ClickHouseStorage implements Storage for ClickHouse.
type ClickHouseStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseStorage creates ClickHouse storage.
func NewClickHouseStorage(db *sql.DB, table string) repository.Storage {
	return &ClickHouseStorage{db: db, table: table}
}

func (s *ClickHouseStorage) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseStorage) Store(ctx context.Context, r *models.MeterReading) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, indicator, value, source, event_id) VALUES (?, ?, ?, ?, ?)", s.table)
	// Idempotency key derived from indicator+timestamp: re-ingesting the same
	// hour overwrites rather than duplicates (ReplacingMergeTree).
	eventID := fmt.Sprintf("%s-%d", r.Indicator, r.Timestamp.Unix())
	_, err := s.db.ExecContext(ctx, q,
		r.Timestamp,
		string(r.Indicator),
		r.Value,
		r.Source,
		eventID,
	)
	return err
}

func (s *ClickHouseStorage) StoreBatch(ctx context.Context, readings []*models.MeterReading) error {
	if len(readings) == 0 {
		return nil
	}
	// Multi-row VALUES insert to reduce round-trips, chunked at 2000 rows.
	const chunkSize = 2000
	for start := 0; start < len(readings); start += chunkSize {
		end := start + chunkSize
		if end > len(readings) {
			end = len(readings)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*5)
		for _, r := range readings[start:end] {
			if r == nil || r.Indicator == "" || r.Timestamp.IsZero() {
				continue
			}
			eventID := fmt.Sprintf("%s-%d", r.Indicator, r.Timestamp.Unix())
			values = append(values, "(?, ?, ?, ?, ?)")
			args = append(args,
				r.Timestamp,
				string(r.Indicator),
				r.Value,
				r.Source,
				eventID,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, indicator, value, source, event_id) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseStorage) Query(ctx context.Context, indicator models.Indicator, from, to time.Time, limit int) ([]*models.MeterReading, error) {
	q := fmt.Sprintf("SELECT ts, indicator, value, source FROM %s WHERE indicator = ? AND ts >= ? AND ts <= ? ORDER BY ts DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, string(indicator), from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*models.MeterReading
	for rows.Next() {
		var r models.MeterReading
		var ind string
		if err := rows.Scan(&r.Timestamp, &ind, &r.Value, &r.Source); err != nil {
			return nil, err
		}
		r.Indicator = models.Indicator(ind)
		readings = append(readings, &r)
	}
	return readings, rows.Err()
}

func (s *ClickHouseStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseStorage) Close() error {
	return nil // Managed by pkg
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, r *models.MeterReading) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.Indicator), map[string]interface{}{
		"indicator": string(r.Indicator),
		"ts":        r.Timestamp.Unix(),
		"value":     r.Value,
		"source":    r.Source,
	})
}

func (p *KafkaPublisher) PublishBatch(ctx context.Context, readings []*models.MeterReading) error {
	if len(readings) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(readings))
	for i, r := range readings {
		msgs[i] = pkgkafka.Message{
			Key: []byte(r.Indicator),
			Value: map[string]interface{}{
				"indicator": string(r.Indicator),
				"ts":        r.Timestamp.Unix(),
				"value":     r.Value,
				"source":    r.Source,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
