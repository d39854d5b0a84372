package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/NeuralTrust/XSSGuard/pkg/config"
	handlers "github.com/NeuralTrust/XSSGuard/pkg/handlers/http"
	"github.com/NeuralTrust/XSSGuard/pkg/infra/breaker"
	"github.com/NeuralTrust/XSSGuard/pkg/infra/events"
	infraLogger "github.com/NeuralTrust/XSSGuard/pkg/infra/logger"
	"github.com/NeuralTrust/XSSGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/XSSGuard/pkg/middleware"
	"github.com/NeuralTrust/XSSGuard/pkg/server"
	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	breakerTimeout     = 30 * time.Second
	breakerMaxFailures = 5
	shutdownGrace      = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the guard server",
	Long:  "Starts the guard in front of the configured upstream, plus the prometheus listener when metrics are enabled.",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := infraLogger.NewLogger("xssguard")
	cfg := appConfig

	client, err := openRedis(cfg, logger)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}

	observers := xss.Observers{events.NewLogObserver(logger)}
	if cfg.Metrics.Enabled {
		observers = append(observers, prometheus.NewMetricsObserver())
	}
	if client != nil {
		cb := breaker.NewCircuitBreaker("detections-publisher", breakerTimeout, breakerMaxFailures, logger)
		worker := events.NewWorker(
			logger,
			events.NewRedisEventPublisher(client, cfg.Redis.DetectionsChannel, cb),
			cfg.Events.QueueSize,
		)
		worker.StartWorkers(cfg.Events.Workers)
		defer worker.Shutdown()
		observers = append(observers, worker)
	}

	gc, err := guardConfig(ctx, cfg, patternSource(cfg, client), logger)
	if err != nil {
		return err
	}
	guard, err := xss.NewGuard(gc, xss.WithObserver(observers))
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"patterns": guard.Patterns().Len(),
		"block":    guard.Blocking(),
	}).Info("guard configured")

	srv := server.NewGuardServer(server.GuardServerDI{
		Config: cfg,
		Logger: logger,
		MiddlewareTransport: middleware.Transport{
			PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
			MetricsMiddleware:      metricsMiddleware(cfg),
			XSSGuardMiddleware:     middleware.NewXSSGuardMiddleware(guard),
		},
		HandlerTransport: handlers.HandlerTransport{
			ForwardedHandler: forwardedHandler(cfg, logger),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	done := make(chan error, 1)
	go func() {
		done <- srv.Shutdown()
	}()
	select {
	case err := <-done:
		return err
	case <-time.After(shutdownGrace):
		return errors.New("shutdown timed out")
	}
}

func metricsMiddleware(cfg *config.Config) middleware.Middleware {
	if !cfg.Metrics.Enabled {
		return nil
	}
	return middleware.NewMetricsMiddleware()
}

func forwardedHandler(cfg *config.Config, logger *logrus.Logger) handlers.Handler {
	if cfg.Server.UpstreamURL == "" {
		logger.Warn("no upstream configured, requests are mirrored back")
		return handlers.NewMirrorHandler()
	}
	return handlers.NewForwardedHandler(logger, cfg.Server.UpstreamURL)
}
