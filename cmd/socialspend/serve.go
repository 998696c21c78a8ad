package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"socialspend/internal/cli"
	apphttp "socialspend/internal/http"
	"socialspend/internal/theme"
)

type serveCmd struct {
	rt        *runtime
	port      string
	rateLimit int
}

func newServeCmd(rt *runtime) *cobra.Command {
	sc := &serveCmd{rt: rt}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE:  sc.run,
	}
	cmd.Flags().StringVar(&sc.port, "port", "", "Port to listen on (defaults to PORT)")
	cmd.Flags().IntVar(&sc.rateLimit, "rate-limit", 60, "Requests per client per minute")
	return cmd
}

func (sc *serveCmd) run(cmd *cobra.Command, _ []string) error {
	cfg, logger := sc.rt.cfg, sc.rt.logger
	port := sc.port
	if port == "" {
		port = cfg.Port
	}

	app, err := cli.OpenApp(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	deps := apphttp.Dependencies{
		Dataset:   app.Dataset,
		Palette:   theme.Default(),
		Logger:    logger,
		RateLimit: sc.rateLimit,
	}
	if app.Importer != nil {
		deps.Importer = app.Importer
	}
	if app.Backend.Publisher != nil {
		deps.Publisher = app.Backend.Publisher
	}

	srv := apphttp.NewServer(":"+port, deps)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger.Logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := app.Close(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting socialspend server",
		"port", port,
		"backend", app.Backend.Type,
		"sources", app.Dataset.SourceNames(),
		"imports", deps.Importer != nil,
		"queued_imports", deps.Publisher != nil)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", port)
		app.Close()
		return err
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}
