package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/md-rashed-zaman/apptbook/libs/db"
	otelx "github.com/md-rashed-zaman/apptbook/libs/otel"
	"github.com/md-rashed-zaman/apptbook/libs/runtime"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/config"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	logger := runtime.NewLogger(cfg.ServiceName, cfg.LogLevel)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, cfg.ServiceName, cfg.Otel)
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	schedule, err := newSchedule(cfg)
	if err != nil {
		logger.Error("invalid slot configuration", "err", err)
		os.Exit(1)
	}

	repo, checks, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store init failed", "err", err)
		os.Exit(1)
	}
	defer closeStore()

	publisher := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:     cfg.KafkaBrokers,
		TopicPrefix: cfg.KafkaTopicPrefix,
	})
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka writer close failed", "err", err)
		}
	}()
	if _, ok := publisher.(events.NopPublisher); ok {
		logger.Warn("change events disabled (no kafka brokers configured)")
	}

	handler, closeHandler := buildHandler(cfg, logger, services{
		repo:      repo,
		schedule:  schedule,
		publisher: publisher,
		checks:    checks,
	})
	defer closeHandler()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}

func newSchedule(cfg config.Config) (*availability.Schedule, error) {
	windows, err := availability.ParseWindows(cfg.SlotWindows)
	if err != nil {
		return nil, err
	}
	return availability.NewSchedule(windows, cfg.SlotStep())
}

// openStore returns the configured repository plus its readiness checks.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (storage.Repository, []runtime.ReadyCheck, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("using in-memory store; data is lost on restart")
		return storage.NewMemoryRepository(), nil, func() {}, nil
	}

	pool, err := db.Open(ctx, cfg.DatabaseURL, db.Options{MaxConns: cfg.DBMaxConns})
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := storage.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		logger.Info("schema applied")
	}
	checks := []runtime.ReadyCheck{{Name: "db", Check: db.ReadyCheck(pool)}}
	return storage.NewPostgresRepository(pool), checks, pool.Close, nil
}
