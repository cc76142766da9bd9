package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/copyleftdev/hopbench/internal/config"
	"github.com/copyleftdev/hopbench/internal/logging"
	"github.com/copyleftdev/hopbench/internal/metrics"
	"github.com/copyleftdev/hopbench/internal/orchestrator"
	"github.com/copyleftdev/hopbench/internal/server"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewLogger(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	serviceLogger := logger.WithFields(map[string]interface{}{
		"service": "hopbench",
		"env":     cfg.Environment,
	})

	if err := run(cfg, serviceLogger); err != nil {
		serviceLogger.WithError(err).Error("benchmark failed")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	docs, err := config.LoadDocuments(cfg.ConfigDir)
	if err != nil {
		return err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	resultsPath := filepath.Join(cfg.ResultsDir, time.Now().Format("20060102-150405"))

	m := metrics.New()
	store := server.NewStore()

	var httpServer *http.Server
	if cfg.HTTP.Addr != "" {
		httpServer = &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      server.NewServer(logger, store, m).Router(),
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		}
		go func() {
			logger.Info("Starting status server", map[string]interface{}{
				"address": httpServer.Addr,
			})
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Status server failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}()
	}

	o := orchestrator.New(docs, logger,
		orchestrator.WithSeed(seed),
		orchestrator.WithWorkers(cfg.Workers),
		orchestrator.WithResultsPath(resultsPath),
		orchestrator.WithMetrics(m),
		orchestrator.WithStatusSink(store),
	)

	jobs, err := o.BuildJobs()
	if err != nil {
		return err
	}

	logger.Info("Starting benchmark", map[string]interface{}{
		"jobs":    len(jobs),
		"seed":    seed,
		"workers": cfg.Workers,
		"results": resultsPath,
	})
	summary, err := o.Execute(ctx, jobs)
	if err != nil {
		shutdown(httpServer, cfg.HTTP.ShutdownTimeout, logger)
		return err
	}
	logger.Info("Benchmark finished", map[string]interface{}{
		"groups": len(summary.Groups),
		"failed": len(summary.Failed),
	})

	if httpServer != nil && cfg.HTTP.Linger {
		logger.Info("Serving status until interrupted")
		<-ctx.Done()
	}
	shutdown(httpServer, cfg.HTTP.ShutdownTimeout, logger)
	return nil
}

func shutdown(srv *http.Server, timeout time.Duration, logger *logging.Logger) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{"error": err.Error()})
		return
	}
	logger.Info("Server stopped")
}
