package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	sharedcache "github.com/radieske/league-ledger-validator/internal/shared/cache"
	"github.com/radieske/league-ledger-validator/internal/shared/config"
	"github.com/radieske/league-ledger-validator/internal/shared/db"
	"github.com/radieske/league-ledger-validator/internal/shared/kafka"
	"github.com/radieske/league-ledger-validator/internal/shared/logger"
	"github.com/radieske/league-ledger-validator/internal/shared/metrics"
	"github.com/radieske/league-ledger-validator/internal/verdict-worker/cache"
	"github.com/radieske/league-ledger-validator/internal/verdict-worker/consumer"
	"github.com/radieske/league-ledger-validator/internal/verdict-worker/pubsub"
	"github.com/radieske/league-ledger-validator/internal/verdict-worker/repository"
)

func main() {
	cfg := config.Load()
	log, err := logger.NewWithFile(cfg.ServiceName, cfg.Env, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(context.Background(), cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group verdict-worker: cada tx id cai sempre na mesma partição
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicTransitions, "verdict-worker")
	defer reader.Close()

	verdictWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicVerdicts)
	defer verdictWriter.Close()

	var dlq consumer.Publisher
	if cfg.TopicTransitionsDLQ != "" {
		dlqWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTransitionsDLQ)
		defer dlqWriter.Close()
		dlq = kafka.Publisher{W: dlqWriter}
	}

	m := metrics.NewValidationMetrics(prometheus.DefaultRegisterer)
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "verdict_worker_messages_consumed_total", Help: "mensagens consumidas"})
	prometheus.MustRegister(consumed)

	proc := &consumer.Processor{
		Log:         log,
		Reader:      reader,
		Validator:   validator.NewDispatcher(cfg.Policy()),
		Store:       repository.NewPostgresRepo(pg),
		Cache:       cache.NewRedisCache(redisClient, cfg.VerdictCacheTTL),
		Verdicts:    kafka.Publisher{W: verdictWriter},
		DLQ:         dlq,
		Broadcaster: pubsub.NewRedisBroadcaster(redisClient),
		Channel:     cfg.RedisVerdictChannel,
		OnConsumed:  consumed.Inc,
		OnVerdict:   m.ObserveVerdict,
		OnError:     m.Stage(),
	}

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(
		metrics.Check{Name: "postgres", Fn: pg.PingContext},
		metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	))
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("verdict-worker started",
		zap.String("consume", cfg.TopicTransitions),
		zap.String("publish", cfg.TopicVerdicts),
		zap.String("policy", cfg.Policy().String()),
	)
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("verdict-worker stopped")
}
