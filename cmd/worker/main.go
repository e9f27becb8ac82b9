// Package main is the entry point for the clipforge worker.
// The worker claims queued jobs from the store, downloads sources and
// drives the clip pipeline. It owns concurrency, retries and backoff.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"clipforge/internal/clip"
	"clipforge/internal/config"
	"clipforge/internal/logger"
	"clipforge/internal/media"
	"clipforge/internal/observability"
	"clipforge/internal/retry"
	"clipforge/internal/store/postgres"
	"clipforge/internal/worker"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: clipforge.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer st.Close()

	// Tracing
	shutdownTracer, err := observability.InitTracer(ctx, "clipforge-worker", cfg.OTELEndpoint)
	if err != nil {
		log.Fatalf("Failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

	// The pipeline command may carry arguments, e.g. "python3 clipper.py".
	parts := strings.Fields(cfg.ClipCommand)
	if len(parts) == 0 {
		log.Fatal("clip_command must not be empty")
	}
	pipeline := clip.NewCommandPipeline(parts[0], parts[1:]...)

	fetcher := media.NewFetcher(cfg.DownloadTimeout, cfg.DownloadMaxBytes)

	policy := retry.Policy{
		BaseDelay:  cfg.RetryBaseDelay,
		Cap:        cfg.RetryDelayCap,
		MaxRetries: cfg.MaxRetries,
	}

	pool := worker.New(st, fetcher, pipeline, policy, worker.Config{
		Concurrency:        cfg.WorkerConcurrency,
		PollInterval:       cfg.WorkerPollInterval,
		IdleBackoffMax:     cfg.WorkerIdleBackoffMax,
		WorkDir:            cfg.WorkDir,
		ProcessingDeadline: cfg.ProcessingDeadline,
		ReapInterval:       cfg.ReapInterval,
	}, logger.New(cfg.LogLevel))

	log.Printf("Worker started with concurrency %d", cfg.WorkerConcurrency)
	go pool.Run(ctx)

	// Metrics
	metricsHandler, shutdownMetrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatalf("Failed to init metrics: %v", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			log.Printf("Failed to shutdown metrics: %v", err)
		}
	}()

	// Dedicated metrics server
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metricsHandler)
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		log.Printf("Worker metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	cancel()

	<-pool.Done()
}
