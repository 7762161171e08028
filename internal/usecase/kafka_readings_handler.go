package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sablalpz/GreenEnergy-Insights/internal/domain/models"
	domrepo "github.com/sablalpz/GreenEnergy-Insights/internal/domain/repository"
	pkgkafka "github.com/sablalpz/GreenEnergy-Insights/pkg/kafka"
)

// KafkaReadingsHandler consumes Kafka messages and writes to storage.
type KafkaReadingsHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaReadingsHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaReadingsHandler {
	return &KafkaReadingsHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaReadingsHandler) Topic() string { return h.topic }

// incoming message schema: {indicator, ts, value, source}
func (h *KafkaReadingsHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Indicator string  `json:"indicator"`
		TS        int64   `json:"ts"`
		Value     float64 `json:"value"`
		Source    string  `json:"source"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.TS > 1e11 { // ms
		m.TS = m.TS / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.TS, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.MeterReading{
		Timestamp: time.Unix(m.TS, 0).UTC(),
		Indicator: models.NormalizeIndicator(m.Indicator),
		Value:     m.Value,
		Source:    m.Source,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Indicator)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaReadingsHandler)(nil)
