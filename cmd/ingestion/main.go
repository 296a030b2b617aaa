// Command ingestion starts the document ingestion HTTP service.
//
// The service accepts documents via POST /api/v1/documents, tokenizes them,
// and publishes their occurrence sets to Kafka for the pair generation
// worker. POST /api/v1/pairs generates pairs synchronously, and the stored
// pairs are served from PostgreSQL when it is configured.
//
// Usage:
//
//	go run ./cmd/ingestion [-config configs/development.yaml]
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

	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/cooccur"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion/handler"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/ingestion/publisher"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/store"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/internal/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/wordpair-pipeline/pkg/postgres"
)

// main loads configuration, creates the Kafka producer, optionally connects to
// PostgreSQL for the read endpoints, and starts the HTTP server. Graceful
// shutdown is triggered by SIGINT/SIGTERM.
func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ingestion service", "port", cfg.Server.Port)

	m := metrics.New()
	checker := health.NewChecker()

	var reader handler.PairReader
	if cfg.Postgres.Host != "" {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		reader = store.NewPairStore(db, m)
		checker.Register("postgres", health.PingCheck(db, true))
		slog.Info("connected to postgres")
	}

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DocumentOccurrences)
	defer producer.Close()
	slog.Info("kafka producer initialized", "topic", cfg.Kafka.Topics.DocumentOccurrences)

	pub := publisher.New(producer, tokenizer.Options{KeepStopWords: cfg.Pairs.KeepStopWords})
	h := handler.New(pub, cooccur.NewGenerator(cfg.Pairs.MaxDistance), reader)
	mux := http.NewServeMux()
	h.Register(mux)
	mux.HandleFunc("GET /health", checker.LiveHandler())
	mux.HandleFunc("GET /ready", checker.ReadyHandler())
	mux.Handle("GET /metrics", metrics.Handler())

	requestTimeout := cfg.Server.WriteTimeout - time.Second
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	server := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Timeout(requestTimeout),
			middleware.Metrics(m),
		),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()
	slog.Info("ingestion service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
	slog.Info("ingestion service stopped")
}
