package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"attest/internal/audit"
	"attest/internal/credential/handler"
	"attest/internal/credential/metrics"
	"attest/internal/credential/service"
	"attest/internal/credential/signature"
	"attest/internal/credential/store"
	"attest/internal/platform/config"
	"attest/internal/platform/httpserver"
	"attest/internal/platform/logger"
	"attest/internal/platform/middleware"
	"attest/internal/platform/postgres"
	platformredis "attest/internal/platform/redis"
	"attest/pkg/platform/httputil"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives under internal/credential.
func main() {
	cfg := config.FromEnv("issuer", ":8080")
	log := logger.New(cfg.Service, cfg.WorkerID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var credStore store.Store = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("postgres connection failed", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db, store.Schema); err != nil {
			log.Error("schema migration failed", "error", err)
			os.Exit(1)
		}
		credStore = store.NewPostgres(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	inbox := make(chan audit.Event, 256)
	var sink audit.Sink
	if cfg.Kafka.Brokers != "" {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Error("kafka connection failed", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}
	auditWorker := audit.NewWorker(audit.NewMemoryStore(), sink, inbox, log)
	publisher := audit.NewPublisher(inbox, log)

	engine := signature.NewEngine(cfg.SharedSecret)
	svc := service.New(credStore, engine, log, cfg.WorkerID,
		service.WithMetrics(metrics.New()),
		service.WithAudit(publisher),
	)

	rp := httputil.NewResponder(cfg.WorkerID)
	limiter := middleware.NewRateLimiter(rawRedis(redisClient), cfg.RateLimit, log, rp, cfg.Service)

	router := chi.NewRouter()
	router.Use(middleware.RequestMetadata)
	router.Use(middleware.Recover(log, rp))
	router.Use(limiter.Handler)
	handler.New(svc, log, rp).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := auditWorker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Info("issuer listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("issuer exited", "error", err)
		os.Exit(1)
	}
	log.Info("issuer stopped")
}

// rawRedis unwraps the platform client for the limiter, preserving the
// "nil means disabled" contract.
func rawRedis(c *platformredis.Client) *redis.Client {
	if c == nil {
		return nil
	}
	return c.Client
}
