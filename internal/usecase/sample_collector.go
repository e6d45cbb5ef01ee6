package usecase

import (
	"context"

	"CoinSage/internal/domain/models"
	drepo "CoinSage/internal/domain/repository"
	mid "CoinSage/internal/middleware"
)

// SampleCollector pulls price samples off the market feed and pushes
// them through the realtime pipeline into the processor.
type SampleCollector struct {
	stream   drepo.MarketStream
	registry drepo.ItemRegistry
	proc     *SampleProcessor
	metrics  drepo.Metrics
	pipe     *mid.RealtimePipeline
	market   string
}

// NewSampleCollector creates a new SampleCollector instance.
func NewSampleCollector(
	stream drepo.MarketStream,
	registry drepo.ItemRegistry,
	proc *SampleProcessor,
	metrics drepo.Metrics,
	pipe *mid.RealtimePipeline,
	market string,
) *SampleCollector {
	return &SampleCollector{
		stream:   stream,
		registry: registry,
		proc:     proc,
		metrics:  metrics,
		pipe:     pipe,
		market:   market,
	}
}

// IsConnected returns true if the market stream is connected.
func (c *SampleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *SampleCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	items, err := c.registry.ActiveItems(ctx, c.market)
	if err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx, items); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	sampleCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, sampleCh, errCh)
	return nil
}

func (c *SampleCollector) consume(ctx context.Context, sampleCh <-chan *models.PriceSample, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errCh:
			if err != nil {
				c.metrics.RecordError("stream")
				_ = c.stream.Reconnect(ctx)
			}
		case s := <-sampleCh:
			if s == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, s)
			} else {
				_ = c.proc.Process(ctx, s)
			}
			c.metrics.RecordLastPrice(s.ItemID, float64(s.Price))
		}
	}
}

func (c *SampleCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying SampleProcessor for lifecycle management.
func (c *SampleCollector) Processor() *SampleProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *SampleCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
