package di

import (
	"context"
	"fmt"
	"time"

	"CoinSage/internal/domain/repository"
	domsvc "CoinSage/internal/domain/service"
	"CoinSage/internal/handler/api"
	mid "CoinSage/internal/middleware"
	internalrepo "CoinSage/internal/repository"
	icache "CoinSage/internal/service/cache"
	"CoinSage/internal/service/marketfeed"
	"CoinSage/internal/services/momentum"
	"CoinSage/internal/services/pulse"
	"CoinSage/internal/services/scoring"
	"CoinSage/internal/usecase"
	pkgcache "CoinSage/pkg/cache"
	pkgch "CoinSage/pkg/clickhouse"
	"CoinSage/pkg/config"
	xhttp "CoinSage/pkg/http"
	pkgkafka "CoinSage/pkg/kafka"
	applogger "CoinSage/pkg/logger"
	"CoinSage/pkg/metrics"
	"CoinSage/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideClickHouseClient creates a ClickHouse client and initializes
// the schema. The audit table carries a 30 day TTL.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db := cfg.ClickHouse.Database
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + db,
		"CREATE TABLE IF NOT EXISTS " + db + ".price_samples (" +
			"ts DateTime, item_id String, market LowCardinality(String), price Int64" +
			") ENGINE=MergeTree ORDER BY (item_id, market, ts)",
		"CREATE TABLE IF NOT EXISTS " + db + ".signal_audit (" +
			"ts DateTime, item_id String, market LowCardinality(String), direction LowCardinality(String), " +
			"raw_score Int32, final_score Int32, category LowCardinality(String), state LowCardinality(String), " +
			"readiness LowCardinality(String), market_status LowCardinality(String), components String, price Int64" +
			") ENGINE=MergeTree ORDER BY (item_id, market, ts) TTL ts + INTERVAL 30 DAY",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideRedisCache creates the shared Redis-backed cache.
func ProvideRedisCache(cfg *config.Config) (*pkgcache.RedisCache, error) {
	return pkgcache.NewRedisCache(
		pkgcache.WithRedisAddr(cfg.Redis.Addr),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSampleStorage creates ClickHouse sample storage.
func ProvideSampleStorage(chClient *pkgch.Client, cfg *config.Config) repository.SampleStorage {
	return internalrepo.NewClickHouseSampleStorage(chClient.DB(), cfg.ClickHouse.Database+".price_samples")
}

// ProvideSamplePublisher creates the Kafka sample publisher.
func ProvideSamplePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.Publisher {
	return internalrepo.NewKafkaSamplePublisher(producer, cfg.Kafka.SampleTopic)
}

// ProvidePriceFeed creates the ClickHouse price feed.
func ProvidePriceFeed(chClient *pkgch.Client, cfg *config.Config, l *applogger.Logger) *internalrepo.CHPriceFeed {
	feed := internalrepo.NewCHPriceFeed(chClient, cfg.ClickHouse.Database+".price_samples")
	feed.SetLogger(l)
	return feed
}

// ProvideAuditLog creates the signal audit log.
func ProvideAuditLog(chClient *pkgch.Client, cfg *config.Config) repository.AuditLog {
	return internalrepo.NewCHAuditLog(chClient, cfg.ClickHouse.Database+".signal_audit")
}

// ProvideStateStore creates the Redis hysteresis state store.
func ProvideStateStore(rc *pkgcache.RedisCache) repository.StateStore {
	return internalrepo.NewRedisStateStore(rc.Client(), rc.Prefix())
}

// ProvideRangeProvider creates the cached range summary provider. Range
// summaries are read on every evaluation, so a memory layer sits in
// front of Redis.
func ProvideRangeProvider(feed *internalrepo.CHPriceFeed, rc *pkgcache.RedisCache, l *applogger.Logger) repository.RangeProvider {
	layered := pkgcache.NewLayeredCache(rc, pkgcache.WithMemoryMaxSize(4096))
	return internalrepo.NewCachedRangeProvider(feed, feed, layered, l)
}

// ProvideItemRegistry creates the registry of tracked items.
func ProvideItemRegistry(cfg *config.Config) repository.ItemRegistry {
	return internalrepo.NewStaticRegistry(cfg.Market.Name, cfg.Market.Items)
}

// ProvideMarketStream creates the marketplace WebSocket stream.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return marketfeed.New(
		cfg.Feed.APIKey,
		cfg.Feed.WebSocketURL,
		cfg.Feed.ReconnectDelay,
		cfg.Feed.PingInterval,
	)
}

// ProvideAnalyzer creates the momentum analyzer.
func ProvideAnalyzer() domsvc.MomentumAnalyzer {
	return momentum.NewAnalyzer()
}

// ProvideStability creates the stabilization checker from config.
func ProvideStability(cfg *config.Config) domsvc.StabilityChecker {
	return momentum.NewStability(momentum.StabilityParams{
		MinHours:       cfg.Signal.Stabilization.MinHours,
		MaxVariancePct: cfg.Signal.Stabilization.MaxVariancePct,
	})
}

// ProvideScoringParams maps config onto scoring parameters.
func ProvideScoringParams(cfg *config.Config) scoring.Params {
	p := scoring.DefaultParams()
	if cfg.Signal.TaxRate > 0 {
		p.TaxRate = cfg.Signal.TaxRate
	}
	if cfg.Signal.Hysteresis.UpgradeMargin > 0 {
		p.UpgradeMargin = cfg.Signal.Hysteresis.UpgradeMargin
	}
	if cfg.Signal.Hysteresis.DowngradeMargin > 0 {
		p.DowngradeMargin = cfg.Signal.Hysteresis.DowngradeMargin
	}
	if cfg.Signal.Hysteresis.StickyWindow > 0 {
		p.StickyWindow = cfg.Signal.Hysteresis.StickyWindow
	}
	if cfg.Signal.Hysteresis.StickyTolerancePct > 0 {
		p.StickyTolerancePct = cfg.Signal.Hysteresis.StickyTolerancePct
	}
	return p
}

// ProvideScorer creates the buy/sell scorer.
func ProvideScorer(p scoring.Params) *scoring.Scorer {
	return scoring.NewScorer(p)
}

// ProvideHysteresis creates the hysteresis filter.
func ProvideHysteresis(p scoring.Params) *scoring.Hysteresis {
	return scoring.NewHysteresis(p)
}

// ProvidePulse creates the market pulse analyzer.
func ProvidePulse(
	registry repository.ItemRegistry,
	ranges repository.RangeProvider,
	feed *internalrepo.CHPriceFeed,
	l *applogger.Logger,
	cfg *config.Config,
) domsvc.ContextProvider {
	return pulse.NewAnalyzer(registry, ranges, feed, l,
		cfg.Signal.Pulse.CacheTTL, cfg.Signal.Pulse.SampleSize)
}

// ProvideEngine creates the signal engine.
func ProvideEngine(
	feed *internalrepo.CHPriceFeed,
	ranges repository.RangeProvider,
	states repository.StateStore,
	audit repository.AuditLog,
	analyzer domsvc.MomentumAnalyzer,
	stability domsvc.StabilityChecker,
	contextProvider domsvc.ContextProvider,
	scorer *scoring.Scorer,
	hyst *scoring.Hysteresis,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.SignalEngine {
	return usecase.NewSignalEngine(usecase.EngineDeps{
		Feed:      feed,
		Ranges:    ranges,
		States:    states,
		Audit:     audit,
		Analyzer:  analyzer,
		Stability: stability,
		Pulse:     contextProvider,
		Scorer:    scorer,
		Hyst:      hyst,
		Metrics:   m,
		Logger:    l,
	}, cfg.Signal.SeriesWindow, cfg.Signal.CacheOnly)
}

// ProvideSnapshot creates the item snapshot use case.
func ProvideSnapshot(
	feed *internalrepo.CHPriceFeed,
	ranges repository.RangeProvider,
	analyzer domsvc.MomentumAnalyzer,
	stability domsvc.StabilityChecker,
	contextProvider domsvc.ContextProvider,
) *usecase.SnapshotUseCase {
	return usecase.NewSnapshotUseCase(feed, ranges, analyzer, stability, contextProvider)
}

// ProvideAlertSink creates the Kafka alert sink.
func ProvideAlertSink(producer *pkgkafka.Producer, cfg *config.Config) domsvc.AlertSink {
	return internalrepo.NewKafkaAlertSink(producer, cfg.Kafka.AlertTopic)
}

// ProvideMonitor creates the background scan monitor.
func ProvideMonitor(
	registry repository.ItemRegistry,
	ranges repository.RangeProvider,
	engine *usecase.SignalEngine,
	contextProvider domsvc.ContextProvider,
	alerts domsvc.AlertSink,
	m repository.Metrics,
	l *applogger.Logger,
	cfg *config.Config,
) *usecase.Monitor {
	return usecase.NewMonitor(registry, ranges, engine, contextProvider, alerts, m, l,
		cfg.Market.Name, cfg.Signal.ScanInterval, cfg.Signal.MinAlertScore)
}

// ProvideSampleProcessor creates the sample ingest processor.
func ProvideSampleProcessor(
	pub repository.Publisher,
	store repository.SampleStorage,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SampleProcessor {
	return usecase.NewSampleProcessor(pub, store, m, cfg.Backend.Type)
}

// ProvideSampleCollector creates the feed collector with its pipeline.
func ProvideSampleCollector(
	stream repository.MarketStream,
	registry repository.ItemRegistry,
	processor *usecase.SampleProcessor,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.SampleCollector {
	pipe := mid.NewRealtimePipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewSampleCollector(stream, registry, processor, m, pipe, cfg.Market.Name)
}

// ProvideKafkaSamplesHandler registers the handler for the sample topic.
func ProvideKafkaSamplesHandler(store repository.SampleStorage, m repository.Metrics, cfg *config.Config) *usecase.KafkaSamplesHandler {
	return usecase.NewKafkaSamplesHandler(cfg.Kafka.SampleTopic, store, m)
}

// ProvideHTTPHandler creates the Echo signal handler with its response
// cache. Redis backs the cache when configured so replicas share hits;
// otherwise an in-process TTL cache is used.
func ProvideHTTPHandler(
	cfg *config.Config,
	engine *usecase.SignalEngine,
	snapshot *usecase.SnapshotUseCase,
	contextProvider domsvc.ContextProvider,
	l *applogger.Logger,
) xhttp.Handler {
	h := api.NewSignalsHandler(engine, snapshot, contextProvider, l)
	if cfg.Redis.Addr != "" {
		h.SetCache(icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		h.SetCache(icache.NewTTLCache())
	}
	return h
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	collector *usecase.SampleCollector,
	monitor *usecase.Monitor,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaSamplesHandler,
	chClient *pkgch.Client,
	httpHandler xhttp.Handler,
) *server.App {
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
	}
	return server.New(cfg, l, collector, monitor, consumer, kh, chClient, httpHandler)
}
