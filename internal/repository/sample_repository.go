package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"CoinSage/internal/domain/models"
	"CoinSage/internal/domain/repository"
	pkgkafka "CoinSage/pkg/kafka"
)

// ClickHouseSampleStorage implements SampleStorage over the
// price_samples table.
type ClickHouseSampleStorage struct {
	db    *sql.DB
	table string
}

// NewClickHouseSampleStorage creates ClickHouse sample storage.
func NewClickHouseSampleStorage(db *sql.DB, table string) repository.SampleStorage {
	return &ClickHouseSampleStorage{db: db, table: table}
}

func (s *ClickHouseSampleStorage) Init(ctx context.Context) error {
	return nil // schema init in pkg
}

func (s *ClickHouseSampleStorage) Store(ctx context.Context, sample *models.PriceSample) error {
	q := fmt.Sprintf("INSERT INTO %s (ts, item_id, market, price) VALUES (?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q,
		sample.Observed,
		sample.ItemID,
		sample.Market,
		int64(sample.Price),
	)
	return err
}

func (s *ClickHouseSampleStorage) StoreBatch(ctx context.Context, samples []*models.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}
	// multi-row VALUES insert, chunked to bound statement size
	const chunkSize = 2000
	for start := 0; start < len(samples); start += chunkSize {
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, p := range samples[start:end] {
			if p == nil || p.ItemID == "" || p.Observed.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, p.Observed, p.ItemID, p.Market, int64(p.Price))
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, item_id, market, price) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseSampleStorage) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseSampleStorage) Close() error {
	return nil // pool managed by pkg
}

var _ repository.SampleStorage = (*ClickHouseSampleStorage)(nil)

// KafkaSamplePublisher implements Publisher for Kafka.
type KafkaSamplePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSamplePublisher creates a Kafka sample publisher.
func NewKafkaSamplePublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaSamplePublisher{producer: producer, topic: topic}
}

func (p *KafkaSamplePublisher) Publish(ctx context.Context, s *models.PriceSample) error {
	return p.producer.Publish(ctx, p.topic, sampleKey(s), samplePayload(s))
}

func (p *KafkaSamplePublisher) PublishBatch(ctx context.Context, samples []*models.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(samples))
	for i, s := range samples {
		msgs[i] = pkgkafka.Message{Key: sampleKey(s), Value: samplePayload(s)}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSamplePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func sampleKey(s *models.PriceSample) []byte {
	return []byte(s.ItemID + ":" + s.Market)
}

func samplePayload(s *models.PriceSample) map[string]interface{} {
	return map[string]interface{}{
		"item_id": s.ItemID,
		"market":  s.Market,
		"price":   s.Price,
		"ts":      s.Observed.Unix(),
	}
}
