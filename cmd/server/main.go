package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"faultline/internal/pipeline"
	readhandler "faultline/internal/pipeline/handler"
	pipelinemetrics "faultline/internal/pipeline/metrics"
	"faultline/internal/platform/config"
	"faultline/internal/platform/httpserver"
	"faultline/internal/platform/logger"
	"faultline/internal/platform/metrics"
	"faultline/internal/platform/middleware"
	"faultline/internal/platform/ratelimit"
	"faultline/internal/upstream"
	"faultline/pkg/platform/middleware/metadata"
	"faultline/pkg/platform/middleware/requesttime"
)

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. The read semantics live in internal/pipeline.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	router := newRouter(cfg, log, prometheus.DefaultRegisterer)
	srv := httpserver.New(cfg.Addr, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting faultline", "addr", cfg.Addr, "source_latency", cfg.SourceLatency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newRouter(cfg config.Server, log *slog.Logger, reg prometheus.Registerer) http.Handler {
	httpMetrics := metrics.New(reg)

	source := upstream.NewSource(upstream.WithLatency(cfg.SourceLatency))
	service := pipeline.New(source,
		pipeline.WithLogger(log),
		pipeline.WithMetrics(pipelinemetrics.New(reg)),
	)

	r := chi.NewRouter()
	r.Use(requesttime.Middleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(log, httpMetrics))
	r.Use(middleware.Logger(log))
	r.Use(middleware.LatencyMiddleware(httpMetrics))
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.RateLimit(ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, 0), log, httpMetrics))

	readhandler.New(service, log).Register(r)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
