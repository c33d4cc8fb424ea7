package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/shared/config"
	"github.com/radieske/league-ledger-validator/internal/shared/kafka"
	"github.com/radieske/league-ledger-validator/internal/shared/logger"
	"github.com/radieske/league-ledger-validator/internal/shared/metrics"
	"github.com/radieske/league-ledger-validator/internal/transition-ingest/service"
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
	log.Info("Kafka brokers", zap.String("brokers", cfg.KafkaBrokers))

	out := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTransitions)
	defer out.Close()
	dlq := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTransitionsDLQ)
	defer dlq.Close()

	forwarded := prometheus.NewCounter(prometheus.CounterOpts{Name: "transition_ingest_forwarded_total", Help: "transições repassadas ao Kafka"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "transition_ingest_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(forwarded, errorsBy)

	wsClient := &service.WSClient{
		URL:         cfg.SubstrateWSURL,
		Log:         log,
		Out:         kafka.Publisher{W: out},
		DLQ:         kafka.Publisher{W: dlq},
		OnForwarded: forwarded.Inc,
		OnError:     func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	metrics.StartMetricsServer(cfg.MetricsPort, nil)
	log.Info("metrics/health listening", zap.String("port", cfg.MetricsPort))

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	wsClient.Start(ctx)
	log.Info("transition-ingest stopped")
}
