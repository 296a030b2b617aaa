// Command pairgen is the pair generation worker. It consumes occurrence
// events from Kafka, generates each document's word pairs, and writes them
// to PostgreSQL, the on-disk segments, and the word-pairs topic.
//
// Usage:
//
//	go run ./cmd/pairgen [-config configs/development.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/consumer"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/store"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/store/segment"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting pair generation worker", "max_distance", cfg.Pairs.MaxDistance)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checker := health.NewChecker()
	sinks := consumer.Sinks{Metrics: m}

	var remote cache.RemoteStore
	if cfg.Redis.Addr != "" {
		rc, err := pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, using local pair cache only", "error", err)
		} else {
			defer rc.Close()
			remote = rc
			checker.Register("redis", health.PingCheck(rc, true))
		}
	}
	pairCache, err := cache.New(remote, cfg.Redis, m)
	if err != nil {
		slog.Error("failed to create pair cache", "error", err)
		os.Exit(1)
	}
	sinks.Cache = pairCache

	if cfg.Postgres.Host != "" {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		pairStore := store.NewPairStore(db, m)
		if err := pairStore.EnsureSchema(ctx); err != nil {
			slog.Error("failed to prepare pair schema", "error", err)
			os.Exit(1)
		}
		sinks.Store = pairStore
		checker.Register("postgres", health.PingCheck(db, false))
		slog.Info("connected to postgres")
	}

	if cfg.Segments.DataDir != "" {
		sink, err := segment.OpenSink(cfg.Segments, m)
		if err != nil {
			slog.Error("failed to open segment sink", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := sink.Close(); err != nil {
				slog.Error("final segment flush failed", "error", err)
			}
		}()
		sink.StartFlushLoop(ctx)
		sinks.Segments = sink
	}

	if cfg.Kafka.Topics.WordPairs != "" {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.WordPairs)
		defer producer.Close()
		sinks.Publisher = producer
	}

	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdownMetrics(shutdownCtx)
		}()
	}
	healthServer := startHealthServer(cfg.Server.Port, checker)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		healthServer.Shutdown(shutdownCtx)
	}()

	handler := consumer.NewHandler(cooccur.NewGenerator(cfg.Pairs.MaxDistance), sinks)
	kafkaConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.DocumentOccurrences,
		handler.Handle,
	)
	pairConsumer := consumer.New(kafkaConsumer)

	slog.Info("pair generation worker ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.DocumentOccurrences,
		"group", cfg.Kafka.ConsumerGroup,
	)
	if err := pairConsumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}
	hits, misses := pairCache.Stats()
	slog.Info("pair generation worker stopped", "cache_hits", hits, "cache_misses", misses)
}

func startHealthServer(port int, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", checker.LiveHandler())
	mux.HandleFunc("GET /ready", checker.ReadyHandler())
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("health server error", "error", err)
		}
	}()
	return server
}
