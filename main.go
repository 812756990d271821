package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sdorra/adguard-rewrite-sync/internal/adguard"
	"github.com/sdorra/adguard-rewrite-sync/internal/config"
	"github.com/sdorra/adguard-rewrite-sync/internal/logger"
	"github.com/sdorra/adguard-rewrite-sync/internal/metrics"
	"github.com/sdorra/adguard-rewrite-sync/internal/reconcile"
	"github.com/sdorra/adguard-rewrite-sync/internal/web"
)

func main() {
	configPath := "config.yaml"
	if p := os.Getenv("ADGUARD_SYNC_CONFIG"); p != "" {
		configPath = p
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Configure(cfg.Log.Level, cfg.Log.Env)

	m := metrics.New(true)

	engine := reconcile.NewEngine(func(server config.Server) adguard.Client {
		return adguard.New(server.URL, server.Username, server.Password, m)
	}, cfg, m)

	// Interval 0 means one reconciliation pass: print the outcome and exit
	// non-zero if any error accumulated.
	if cfg.SyncInterval == 0 {
		outcome := runSync(context.Background(), engine, m)
		if err := json.NewEncoder(os.Stdout).Encode(outcome); err != nil {
			slog.Error("Failed to encode outcome", "error", err)
			os.Exit(1)
		}
		if outcome.Failed() {
			os.Exit(1)
		}
		return
	}

	runDaemon(cfg, engine, m)
}

func runDaemon(cfg *config.Config, engine reconcile.Engine, m *metrics.Metrics) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var server *http.Server
	if cfg.Metrics.Enabled {
		server = web.New(cfg.Metrics.Addr, m)
		go func() {
			slog.Info("Starting metrics server", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("Metrics server failed", "error", err)
			}
		}()
	}

	slog.Info("Starting adguard-rewrite-sync service", "interval", cfg.SyncInterval)

	wg := &sync.WaitGroup{}
	wg.Add(1)
	go runSyncLoop(ctx, wg, engine, m, cfg.SyncInterval)

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	slog.Info("Shutdown signal received")
	cancel()

	if server != nil {
		shutdownCtx, cancelServer := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelServer()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}

	wg.Wait()
	slog.Info("Service shutdown complete")
}

func runSyncLoop(ctx context.Context, wg *sync.WaitGroup, engine reconcile.Engine, m *metrics.Metrics, interval time.Duration) {
	defer wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		runSync(ctx, engine, m)

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			slog.Info("Stopping sync loop")
			return
		}
	}
}

func runSync(ctx context.Context, engine reconcile.Engine, m *metrics.Metrics) reconcile.Outcome {
	slog.Info("Starting sync operation")
	start := time.Now()

	outcome := engine.Reconcile(ctx)

	m.SetSyncDuration(time.Since(start))
	m.IncSyncRun(!outcome.Failed())

	slog.Info("Sync completed", "changed", outcome.Changed, "errors", len(outcome.Errors))
	return outcome
}
