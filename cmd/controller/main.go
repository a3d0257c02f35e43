// Package main is the entry point for the transcodeplane controller.
// It serves the HTTP API and runs every accepted job in-process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"transcodeplane/internal/config"
	"transcodeplane/internal/controller"
	"transcodeplane/internal/controller/handlers"
	"transcodeplane/internal/events"
	"transcodeplane/internal/logger"
	"transcodeplane/internal/observability"
	"transcodeplane/internal/orchestrator"
	"transcodeplane/internal/runtime"
	"transcodeplane/internal/store/memory"
	"transcodeplane/internal/transcode"

	"go.opentelemetry.io/otel"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: transcodeplane.yaml in current directory)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()
	logs := logger.New(cfg.LogLevel)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	// Tracing
	shutdownTracer := observability.NoopShutdown
	if cfg.TracingEnabled {
		shutdownTracer, err = observability.InitTracer(ctx, "transcodeplane-controller", cfg.OTELEndpoint)
		if err != nil {
			log.Fatalf("Failed to init tracing: %v", err)
		}
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Failed to shutdown tracer: %v", err)
		}
	}()

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

	st := memory.New()

	err = observability.RegisterJobGauge(otel.Meter("transcodeplane-controller"),
		func(ctx context.Context) (map[string]int64, error) {
			counts, err := st.CountByStatus(ctx)
			if err != nil {
				return nil, err
			}
			out := make(map[string]int64, len(counts))
			for status, n := range counts {
				out[string(status)] = n
			}
			return out, nil
		}, logs)
	if err != nil {
		log.Printf("Failed to register job gauge: %v", err)
	}

	// Select where ffmpeg runs
	var rt runtime.Runtime
	switch cfg.Runtime {
	case config.RuntimeDocker:
		dockerRT, err := runtime.NewDockerRuntime()
		if err != nil {
			log.Fatalf("Failed to create Docker runtime: %v", err)
		}
		rt = dockerRT
		logs.Info("using docker runtime", "image", cfg.FFmpegImage)
	default:
		rt = runtime.NewExecRuntime()
		logs.Info("using exec runtime", "ffmpeg", cfg.FFmpegPath, "ffprobe", cfg.FFprobePath)
	}

	pipeline := transcode.New(rt, transcode.Config{
		FFmpegPath:  cfg.FFmpegPath,
		FFprobePath: cfg.FFprobePath,
		Image:       cfg.FFmpegImage,
	})

	// Terminal job events
	var publisher events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		redisPub, err := events.NewRedisPublisher(ctx, cfg.RedisURL, events.DefaultStream)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		publisher = redisPub
		logs.Info("publishing job events", "stream", events.DefaultStream)
	}
	defer publisher.Close()

	orch, err := orchestrator.New(st, pipeline, publisher, logs, orchestrator.Config{
		OutputDir:   cfg.OutputDir,
		Concurrency: cfg.WorkerConcurrency,
	})
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}

	// Start Server
	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	srv := controller.New(addr, st, orch, handlers.Options{
		StrictTiers: cfg.StrictTiers,
		Logger:      logs,
	}, metricsHandler)

	go func() {
		logs.Info("transcodeplane controller starting", "addr", addr, "output_dir", cfg.OutputDir)
		if err := srv.Run(ctx); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	// Graceful Shutdown. Jobs still transcoding are abandoned.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logs.Info("shutting down controller")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	logs.Info("server exited properly")
}
