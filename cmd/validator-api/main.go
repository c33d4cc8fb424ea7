package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	sharedcache "github.com/radieske/league-ledger-validator/internal/shared/cache"
	"github.com/radieske/league-ledger-validator/internal/shared/config"
	"github.com/radieske/league-ledger-validator/internal/shared/db"
	"github.com/radieske/league-ledger-validator/internal/shared/logger"
	"github.com/radieske/league-ledger-validator/internal/shared/metrics"
	"github.com/radieske/league-ledger-validator/internal/validator-api/cache"
	httpapi "github.com/radieske/league-ledger-validator/internal/validator-api/http"
	"github.com/radieske/league-ledger-validator/internal/validator-api/repo"
	"github.com/radieske/league-ledger-validator/internal/validator-api/ws"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.NewWithFile(cfg.ServiceName, cfg.Env, logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAgeDays: cfg.LogMaxAgeDays,
	})
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}
	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// conecta com db Postgres
	pg, err := db.ConnectPostgres(context.Background(), cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// conecta com cache Redis
	redisClient, err := sharedcache.ConnectRedis(context.Background(), cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// stream de vereditos: Redis Pub/Sub -> hub WS
	hub := ws.NewHub(func(*http.Request) bool { return true })
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisVerdictChannel, hub, log)

	api := &httpapi.API{
		Log:      log,
		Policy:   cfg.Policy(),
		ReadRepo: &repo.ReadRepo{DB: pg},
		Cache:    cache.New(redisClient, cfg.VerdictCacheTTL),
		Metrics:  metrics.NewValidationMetrics(prometheus.DefaultRegisterer),
		WS:       hub.HandleWS,
	}

	// sobe servidor de métricas e health
	metrics.StartMetricsServer(cfg.MetricsPort, metrics.All(
		metrics.Check{Name: "postgres", Fn: pg.PingContext},
		metrics.Check{Name: "redis", Fn: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	))

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		_ = srv.Shutdown(sctx)
	}()

	log.Info("http listening",
		zap.String("addr", srv.Addr),
		zap.String("metrics", cfg.MetricsPort),
		zap.String("policy", cfg.Policy().String()),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("http server failed", zap.Error(err))
	}
	log.Info("validator-api stopped")
}
