package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/apptbook/libs/httpx"
	"github.com/md-rashed-zaman/apptbook/libs/kafkax"
	"github.com/md-rashed-zaman/apptbook/libs/runtime"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/config"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/events"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/apptbook/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type services struct {
	repo      storage.Repository
	schedule  *availability.Schedule
	publisher events.Publisher
	checks    []runtime.ReadyCheck
}

// buildHandler assembles the mux and middleware chain. The returned func
// releases the Redis client when one was opened.
func buildHandler(cfg config.Config, logger *slog.Logger, svc services) (http.Handler, func()) {
	checks := append([]runtime.ReadyCheck(nil), svc.checks...)
	if len(kafkax.SplitBrokers(cfg.KafkaBrokers)) > 0 {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(cfg.KafkaBrokers)})
	}

	rateLimit, redisCheck, closeRedis := rateLimiter(cfg, logger)
	if redisCheck != nil {
		checks = append(checks, *redisCheck)
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.NewBookingHandler(svc.repo, svc.schedule, svc.publisher, logger).
		Register(mux, handlers.RequireStaff(cfg.StaffJWTSecret))
	handlers.NewStaffHandler(handlers.StaffConfig{
		JWTSecret:    cfg.StaffJWTSecret,
		Username:     cfg.StaffUsername,
		PasswordHash: cfg.StaffPasswordHash,
		TokenTTL:     cfg.StaffTokenTTL(),
	}, logger).Register(mux)

	h := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: cfg.CORSAllowedOrigins,
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			ExposedHeaders: []string{httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
		rateLimit,
		httpx.WithBodyLimit(cfg.RequestBodyLimitBytes),
		httpx.WithTimeout(cfg.RequestTimeout()),
	)
	return otelhttp.NewHandler(h, "booking"), closeRedis
}

// rateLimiter prefers Redis so replicas share one budget, and falls back to
// the in-process limiter when REDIS_ADDR is unset. A limit <= 0 disables it.
func rateLimiter(cfg config.Config, logger *slog.Logger) (httpx.Middleware, *runtime.ReadyCheck, func()) {
	if cfg.RateLimitPerMinute <= 0 {
		return nil, nil, func() {}
	}
	if cfg.RedisAddr == "" {
		return httpx.NewRateLimiter(cfg.RateLimitPerMinute, time.Minute).Middleware(), nil, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rl := httpx.NewRedisRateLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, cfg.ServiceName+":rl")
	check := runtime.ReadyCheck{Name: "redis", Check: rl.ReadyCheck()}
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Error("redis close failed", "err", err)
		}
	}
	return rl.Middleware(logger, cfg.RateLimitFailOpen), &check, closeFn
}
