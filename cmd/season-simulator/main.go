package main

import (
	"context"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/league-ledger-validator/internal/ledger/assets"
	"github.com/radieske/league-ledger-validator/internal/ledger/validator"
	"github.com/radieske/league-ledger-validator/internal/season-simulator/feed"
	"github.com/radieske/league-ledger-validator/internal/season-simulator/fixtures"
	"github.com/radieske/league-ledger-validator/internal/season-simulator/publisher"
	"github.com/radieske/league-ledger-validator/internal/season-simulator/service"
	"github.com/radieske/league-ledger-validator/internal/shared/config"
	"github.com/radieske/league-ledger-validator/internal/shared/logger"
	"github.com/radieske/league-ledger-validator/internal/shared/metrics"
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

	// Monta a temporada inteira antes de publicar qualquer coisa
	b := fixtures.Builder{SeasonID: cfg.SimSeasonID, Seed: cfg.SimSeed, Turns: cfg.SimTurns}
	steps, err := b.Build()
	if err != nil {
		log.Fatal("build season", zap.Error(err))
	}
	final, err := fixtures.Standings(steps)
	if err != nil {
		log.Fatal("season standings", zap.Error(err))
	}
	fields := []zap.Field{
		zap.String("season", cfg.SimSeasonID),
		zap.Int("steps", len(steps)),
		zap.Uint32("turn", final.CurrentTurn),
	}
	if final.WinnerTeamID != nil {
		name, _ := assets.TeamName(*final.WinnerTeamID)
		fields = append(fields, zap.String("winner", name))
	}
	log.Info("season built", fields...)

	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "season_sim_transitions_published_total",
		Help: "transições propostas publicadas",
	})
	feedClients := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "season_sim_feed_connections",
		Help: "consumidores conectados ao feed WS",
	})
	prometheus.MustRegister(published, feedClients)
	metrics.StartMetricsServer(cfg.MetricsPort, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var pub service.Publisher
	switch cfg.SimSink {
	case "ws":
		hub := feed.NewHub(log)
		hub.OnConnected = func(delta int) { feedClients.Add(float64(delta)) }
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		srv := &http.Server{Addr: ":" + cfg.HTTPPort, Handler: mux}
		go func() {
			log.Info("substrate feed listening", zap.String("port", cfg.HTTPPort), zap.String("path", "/ws"))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal("feed server error", zap.Error(err))
			}
		}()
		defer srv.Close()
		pub = hub
	default:
		kp, err := publisher.NewKafkaPublisher(strings.Split(cfg.KafkaBrokers, ","), cfg.TopicTransitions, cfg.Env, log)
		if err != nil {
			log.Fatal("kafka publisher", zap.Error(err))
		}
		defer kp.Close()
		pub = kp
	}

	runner := &service.Runner{
		Log:         log,
		Validator:   validator.NewDispatcher(cfg.Policy()),
		Publisher:   pub,
		Interval:    cfg.SimInterval,
		OnPublished: published.Inc,
	}
	if err := runner.Run(ctx, steps); err != nil && ctx.Err() == nil {
		log.Fatal("season-simulator stopped with error", zap.Error(err), zap.Bool("rejected", service.IsRejected(err)))
	}
	log.Info("season-simulator finished")
}
