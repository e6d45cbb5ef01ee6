package usecase

import (
	"context"
	"fmt"
	"time"

	"CoinSage/internal/domain/models"
	drepo "CoinSage/internal/domain/repository"
)

// SampleProcessor routes incoming price samples to the configured
// backend: kafka publishes for downstream consumers, clickhouse writes
// straight to storage.
type SampleProcessor struct {
	pub     drepo.Publisher
	store   drepo.SampleStorage
	metrics drepo.Metrics
	backend string
}

// NewSampleProcessor creates a new SampleProcessor instance.
func NewSampleProcessor(
	pub drepo.Publisher,
	store drepo.SampleStorage,
	metrics drepo.Metrics,
	backend string,
) *SampleProcessor {
	return &SampleProcessor{
		pub:     pub,
		store:   store,
		metrics: metrics,
		backend: backend,
	}
}

// Process routes a single sample to the configured backend.
func (p *SampleProcessor) Process(ctx context.Context, s *models.PriceSample) error {
	if s == nil {
		return fmt.Errorf("sample is nil")
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.Publish(ctx, s)
	case "clickhouse":
		err = p.store.Store(ctx, s)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("ingest")
		return fmt.Errorf("process sample: %w", err)
	}

	p.metrics.RecordSampleStored(p.backend, s.Market)
	p.metrics.RecordLatency("ingest", time.Since(start).Seconds())

	return nil
}

// ProcessBatch routes multiple samples in a batch.
func (p *SampleProcessor) ProcessBatch(ctx context.Context, samples []*models.PriceSample) error {
	if len(samples) == 0 {
		return nil
	}

	start := time.Now()
	var err error

	switch p.backend {
	case "kafka":
		err = p.pub.PublishBatch(ctx, samples)
	case "clickhouse":
		err = p.store.StoreBatch(ctx, samples)
	default:
		err = fmt.Errorf("unknown backend: %s", p.backend)
	}

	if err != nil {
		p.metrics.RecordError("ingest_batch")
		return fmt.Errorf("process batch: %w", err)
	}

	for _, s := range samples {
		p.metrics.RecordSampleStored(p.backend, s.Market)
	}
	p.metrics.RecordLatency("ingest_batch", time.Since(start).Seconds())

	return nil
}

// Close closes underlying resources if available.
func (p *SampleProcessor) Close() {
	if p.pub != nil {
		_ = p.pub.Close()
	}
	if p.store != nil {
		_ = p.store.Close()
	}
}
