package repository

import (
	"context"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
)

// ReadingStream is a live feed of meter readings from a grid operator.
type ReadingStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.MeterReading, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Publisher pushes readings onto the message backbone.
type Publisher interface {
	Publish(ctx context.Context, r *models.MeterReading) error
	PublishBatch(ctx context.Context, readings []*models.MeterReading) error
	Close() error
}

// Storage persists raw readings.
type Storage interface {
	Init(ctx context.Context) error // ensure tables, health checks
	Store(ctx context.Context, r *models.MeterReading) error
	StoreBatch(ctx context.Context, readings []*models.MeterReading) error
	Query(ctx context.Context, indicator models.Indicator, from, to time.Time, limit int) ([]*models.MeterReading, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// Metrics records operational counters.
type Metrics interface {
	RecordMessageSent(backend string, indicator string)
	RecordError(kind string)
	RecordLastValue(indicator string, value float64)
	RecordLatency(op string, seconds float64)
}
