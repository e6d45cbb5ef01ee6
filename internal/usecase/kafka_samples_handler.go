package usecase

import (
	"context"
	"encoding/json"
	"time"

	"CoinSage/internal/domain/models"
	domrepo "CoinSage/internal/domain/repository"
	pkgkafka "CoinSage/pkg/kafka"
)

// KafkaSamplesHandler consumes sample messages and writes to storage.
type KafkaSamplesHandler struct {
	topic   string
	storage domrepo.SampleStorage
	metrics domrepo.Metrics
}

func NewKafkaSamplesHandler(topic string, storage domrepo.SampleStorage, metrics domrepo.Metrics) *KafkaSamplesHandler {
	return &KafkaSamplesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaSamplesHandler) Topic() string { return h.topic }

// incoming message schema: {item_id, market, price, ts}
func (h *KafkaSamplesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		ItemID string `json:"item_id"`
		Market string `json:"market"`
		Price  int64  `json:"price"`
		TS     int64  `json:"ts"`
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
	err := h.storage.Store(ctx, &models.PriceSample{
		ItemID:   m.ItemID,
		Market:   m.Market,
		Price:    int(m.Price),
		Observed: time.Unix(m.TS, 0).UTC(),
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordSampleStored("clickhouse", m.Market)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaSamplesHandler)(nil)
