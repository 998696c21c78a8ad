// Package cli provides common initialization shared by cmd/socialspend and
// cmd/socialspend-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"socialspend/internal/backend"
	"socialspend/internal/cache"
	"socialspend/internal/config"
	applog "socialspend/internal/log"
	"socialspend/internal/services"
	"socialspend/internal/storage"
)

// SetupLogger builds the application logger for level, tags it with
// component and makes it the slog default.
func SetupLogger(w io.Writer, level, component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(level)
	cfg.Component = component
	if w != nil {
		cfg.Output = w
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration from the environment and
// validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InitSQLite opens the SQLite repository at dbPath, logging failures.
func InitSQLite(logger *slog.Logger, dbPath string) (*storage.SQLiteRepository, error) {
	repo, err := storage.NewSQLiteRepository(dbPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", dbPath)
		return nil, err
	}
	return repo, nil
}

// App bundles the backend and the services built on it.
type App struct {
	Backend  *backend.BackendResult
	Dataset  *services.DatasetService
	Importer *services.ImportService // nil for read-only backends
	caches   *cache.Manager
}

// OpenApp creates the configured backend, the cached dataset service and,
// when the backend can store datasets, the import service.
func OpenApp(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*App, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.WithComponent(applog.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	snapshots := cache.NewLRUCache[services.Snapshot](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager(logger.WithComponent(applog.ComponentCache).Logger)
	manager.Register(snapshots)
	manager.StartCleanup(cfg.CacheTTL)

	app := &App{
		Backend: res,
		Dataset: services.NewDatasetService(res.Sources, snapshots, logger),
		caches:  manager,
	}
	if res.Store != nil {
		app.Importer = services.NewImportService(res.Store, logger)
		app.Importer.SetImportDir(cfg.ImportDir)
		app.Importer.OnImport(app.Dataset.Invalidate)
	}
	return app, nil
}

// Close stops cache cleanup and releases the backend.
func (a *App) Close() error {
	a.caches.Stop()
	return a.Backend.Close()
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached")
		case <-finished:
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
