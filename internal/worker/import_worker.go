package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"socialspend/internal/amqp"
	"socialspend/internal/services"
)

// Importer is the part of services.ImportService the worker needs.
type Importer interface {
	ImportFile(ctx context.Context, path, source string, strict bool) (services.ImportReport, error)
	ImportLocalFile(ctx context.Context, path, source string, strict bool) (services.ImportReport, error)
}

// Consumer delivers import requests until ctx is done.
type Consumer interface {
	ConsumeImports(ctx context.Context, handler func(context.Context, *amqp.ImportRequest) error) error
}

// ImportWorker loads the files named by AMQP import requests into the store.
type ImportWorker struct {
	importer Importer
}

func NewImportWorker(importer Importer) *ImportWorker {
	return &ImportWorker{importer: importer}
}

// Run consumes import requests until ctx is cancelled.
func (w *ImportWorker) Run(ctx context.Context, consumer Consumer) error {
	err := consumer.ConsumeImports(ctx, w.HandleImportRequest)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// HandleImportRequest processes a single import request from AMQP. Paths are
// resolved under the import directory. A missing file or a path outside the
// directory is logged and acknowledged since retrying cannot fix it.
func (w *ImportWorker) HandleImportRequest(ctx context.Context, msg *amqp.ImportRequest) error {
	slog.InfoContext(ctx, "Processing import request",
		"path", msg.Path,
		"source", msg.Source,
		"strict", msg.Strict,
		"requested_at", msg.RequestedAt)

	report, err := w.importer.ImportFile(ctx, msg.Path, msg.Source, msg.Strict)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.WarnContext(ctx, "Import file not found, dropping request", "path", msg.Path)
		return nil
	case errors.Is(err, services.ErrOutsideImportDir):
		slog.WarnContext(ctx, "Import path outside import directory, dropping request", "path", msg.Path)
		return nil
	case err != nil:
		return fmt.Errorf("import %s: %w", msg.Path, err)
	}

	slog.InfoContext(ctx, "Successfully imported dataset",
		"path", msg.Path,
		"source", report.Source,
		"batch_id", report.BatchID,
		"records", report.Records,
		"rejected", len(report.Rejected))
	return nil
}

// StartupImport imports paths before the worker starts consuming, so a fresh
// database is usable without a queued request. Failures are logged and
// counted, never fatal.
func (w *ImportWorker) StartupImport(ctx context.Context, paths []string) (imported, failed int) {
	for _, p := range paths {
		if _, err := w.importer.ImportLocalFile(ctx, p, "", false); err != nil {
			slog.ErrorContext(ctx, "Startup import failed", "path", p, "error", err)
			failed++
			continue
		}
		imported++
	}
	slog.InfoContext(ctx, "Startup import completed",
		"total", len(paths),
		"imported", imported,
		"errors", failed)
	return imported, failed
}
