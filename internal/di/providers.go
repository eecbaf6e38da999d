package di

import (
	"context"
	"fmt"

	"FeeCast/internal/domain/repository"
	"FeeCast/internal/handler/api"
	internalrepo "FeeCast/internal/repository"
	"FeeCast/internal/scheduler"
	"FeeCast/internal/services/forecast"
	"FeeCast/internal/services/subgraph"
	"FeeCast/internal/usecase"
	"FeeCast/pkg/cache"
	pkgch "FeeCast/pkg/clickhouse"
	"FeeCast/pkg/config"
	xhttp "FeeCast/pkg/http"
	pkgkafka "FeeCast/pkg/kafka"
	applogger "FeeCast/pkg/logger"
	"FeeCast/pkg/metrics"
	"FeeCast/pkg/server"
)

// ProvideLogger builds the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache returns the in-process cache, backed by Redis when enabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	var rc *cache.RedisCache
	if cfg.Redis.Enabled {
		var err error
		rc, err = cache.NewRedisCache(
			cache.WithRedisAddr(cfg.Redis.Addr),
			cache.WithRedisAuth(cfg.Redis.Password, cfg.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
	}
	return cache.NewLayeredCache(rc, cache.WithMemoryMaxSize(512), cache.WithMemoryMaxTTL(cfg.Forecast.CacheTTL)), nil
}

// ProvideClickHouseClient connects and applies the fee schema. Nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ClickHouse.ReadTimeout)
	defer cancel()
	if err := client.Exec(ctx, pkgch.FeeSchema(cfg.ClickHouse.Database)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer. Nil when Kafka is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.Linger),
		pkgkafka.WithWriteTimeout(cfg.Kafka.Producer.WriteTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaPublisher wraps the producer. Nil when Kafka is disabled.
func ProvideKafkaPublisher(producer *pkgkafka.Producer, cfg *config.Config) *internalrepo.KafkaPublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.SnapshotTopic, cfg.Kafka.ForecastTopic)
}

func ProvideSubgraphClient(cfg *config.Config, l *applogger.Logger) (*subgraph.Client, error) {
	sg := cfg.Source.Subgraph
	c, err := subgraph.NewClient(sg.URL,
		subgraph.WithPeriod(sg.Period),
		subgraph.WithRetry(sg.Retries, sg.RetryDelay),
		subgraph.WithHTTPClient(xhttp.NewClient(xhttp.WithTimeout(sg.Timeout))),
		subgraph.WithLogger(l),
	)
	if err != nil {
		return nil, fmt.Errorf("subgraph client: %w", err)
	}
	return c, nil
}

// ProvideFeeSource picks the store the forecast reads from.
func ProvideFeeSource(cfg *config.Config, sg *subgraph.Client, ch *pkgch.Client, l *applogger.Logger) repository.FeeSource {
	if cfg.Source.Type == "clickhouse" && ch != nil {
		store := internalrepo.NewCHFeeStore(ch)
		store.SetLogger(l)
		return store
	}
	return sg
}

func ProvideEngine(cfg *config.Config) *forecast.Engine {
	return forecast.New(forecast.Params{
		Anchor:           cfg.Forecast.CycleAnchor,
		WindowWeeks:      cfg.Forecast.WindowWeeks,
		AnomalyThreshold: cfg.Forecast.AnomalyThreshold,
		SpikeMultiplier:  cfg.Forecast.SpikeMultiplier,
		RewardShare:      cfg.Forecast.RewardShare,
	})
}

func ProvideForecastUseCase(
	cfg *config.Config,
	src repository.FeeSource,
	engine *forecast.Engine,
	m repository.Metrics,
	pub *internalrepo.KafkaPublisher,
	l *applogger.Logger,
) *usecase.ForecastUseCase {
	opts := []usecase.ForecastOption{
		usecase.WithHistoryDays(cfg.HistoryDays()),
		usecase.WithDecimals(cfg.Forecast.ValuationDecimals, cfg.Forecast.FeeDecimals),
		usecase.WithTimeout(cfg.Forecast.Timeout),
		usecase.WithLogger(l),
	}
	if pub != nil {
		opts = append(opts, usecase.WithForecastPublisher(pub))
	}
	return usecase.NewForecastUseCase(src, engine, m, opts...)
}

// ProvideSnapshotSync is nil unless snapshots can be published.
func ProvideSnapshotSync(cfg *config.Config, sg *subgraph.Client, pub *internalrepo.KafkaPublisher, m repository.Metrics, l *applogger.Logger) *usecase.SnapshotSyncUseCase {
	if pub == nil {
		return nil
	}
	return usecase.NewSnapshotSyncUseCase(sg, pub, m, cfg.HistoryDays(), l)
}

// ProvideKafkaConsumer builds the ingestion consumer. Nil unless enabled.
func ProvideKafkaConsumer(cfg *config.Config, ch *pkgch.Client, m repository.Metrics, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled || ch == nil {
		return nil, nil
	}
	kc := cfg.Kafka.Consumer
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(kc.GroupID),
		pkgkafka.WithConsumerWorkers(kc.Workers),
		pkgkafka.WithConsumerBufferSize(kc.BufferSize),
		pkgkafka.WithConsumerRetry(kc.RetryMax, kc.BackoffMin, kc.BackoffMax),
		pkgkafka.WithConsumerFetch(kc.MinBytes, kc.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	store := internalrepo.NewCHFeeStore(ch)
	store.SetLogger(l)
	consumer.RegisterHandler(usecase.NewSnapshotHandler(cfg.Kafka.SnapshotTopic, store, m))
	return consumer, nil
}

func ProvideForecastHandler(cfg *config.Config, uc *usecase.ForecastUseCase, c cache.Service, l *applogger.Logger) *api.ForecastEchoHandler {
	h := api.NewForecastEchoHandler(l, uc)
	h.SetCache(c, cfg.Forecast.CacheTTL)
	return h
}

func ProvideHTTPServer(cfg *config.Config, h *api.ForecastEchoHandler, l *applogger.Logger) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(l),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	if cfg.RateLimit.Enabled {
		opts = append(opts, xhttp.WithRateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}
	return xhttp.NewServer(h, opts...)
}

func ProvideScheduler(cfg *config.Config, uc *usecase.ForecastUseCase, sync *usecase.SnapshotSyncUseCase, c cache.Service, l *applogger.Logger) *scheduler.Scheduler {
	opts := []scheduler.Option{
		scheduler.WithCache(c, cfg.Forecast.CacheTTL),
		scheduler.WithJobTimeout(cfg.Forecast.Timeout),
	}
	if sync != nil {
		opts = append(opts, scheduler.WithSync(sync, cfg.Source.SyncCron))
	}
	return scheduler.NewScheduler(context.Background(), uc, l, opts...)
}

// ProvideInfra groups the closable backends for the app.
func ProvideInfra(c cache.Service, ch *pkgch.Client, producer *pkgkafka.Producer, consumer *pkgkafka.Consumer) server.Infra {
	return server.Infra{Cache: c, ClickHouse: ch, Producer: producer, Consumer: consumer}
}

func ProvideApp(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, sched *scheduler.Scheduler, infra server.Infra) *server.App {
	return server.New(cfg, l, srv, sched, infra)
}
