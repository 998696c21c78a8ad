package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"socialspend/internal/ingest"
	applog "socialspend/internal/log"
	"socialspend/internal/sheets"
	"socialspend/internal/sheets/file"
	"socialspend/internal/storage"
)

// batchImporter is implemented by stores that also record rejected rows with
// the import batch.
type batchImporter interface {
	Import(ctx context.Context, source string, res ingest.Result) (storage.ImportBatch, error)
}

// ImportReport summarises one import.
type ImportReport struct {
	Source   string
	BatchID  int64
	Records  int
	Rejected []ingest.RowError
}

// ImportService copies datasets from a source into a store.
type ImportService struct {
	store     sheets.RecordStore
	logger    *applog.StructuredLogger
	onImport  func()
	importDir string
}

func NewImportService(store sheets.RecordStore, logger *applog.Logger) *ImportService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ImportService{
		store:  store,
		logger: applog.NewStructuredLogger(logger.WithComponent(applog.ComponentIngest)),
	}
}

// OnImport registers fn to run after every successful import, typically to
// invalidate cached snapshots.
func (s *ImportService) OnImport(fn func()) {
	s.onImport = fn
}

// SetImportDir sets the directory ImportFile resolves request paths against.
func (s *ImportService) SetImportDir(dir string) {
	s.importDir = dir
}

// ImportFile imports a CSV or XLSX file named relative to the import
// directory. Absolute paths and paths escaping the directory, symlinks
// included, fail with ErrOutsideImportDir. source defaults to the file name.
func (s *ImportService) ImportFile(ctx context.Context, path, source string, strict bool) (ImportReport, error) {
	if s.importDir == "" {
		return ImportReport{}, errors.New("import service has no import directory")
	}
	resolved, err := ResolveImportPath(s.importDir, path)
	if err != nil {
		return ImportReport{}, err
	}
	if source == "" {
		source = filepath.Base(path)
	}
	return s.ImportLocalFile(ctx, resolved, source, strict)
}

// ImportLocalFile imports the file at path as given. It is meant for paths
// supplied by the operator, such as DATA_FILE or a CLI argument.
func (s *ImportService) ImportLocalFile(ctx context.Context, path, source string, strict bool) (ImportReport, error) {
	src := file.New(path)
	if source == "" {
		source = src.Name()
	}
	return s.importFrom(ctx, src, source, strict)
}

// ImportSource loads src and stores its records under src.Name(). With strict
// set, any rejected row aborts the import before the store is touched.
func (s *ImportService) ImportSource(ctx context.Context, src sheets.RecordSource, strict bool) (ImportReport, error) {
	return s.importFrom(ctx, src, src.Name(), strict)
}

func (s *ImportService) importFrom(ctx context.Context, src sheets.RecordSource, source string, strict bool) (ImportReport, error) {
	if s.store == nil {
		return ImportReport{}, errors.New("import service has no store")
	}

	res, err := src.Load(ctx)
	if err != nil {
		s.logger.LogError(ctx, "Failed to load dataset", err, applog.OpLoad,
			applog.NewFields().WithImport(source, 0, 0))
		return ImportReport{}, fmt.Errorf("load %s: %w", source, err)
	}

	report := ImportReport{Source: source, Records: len(res.Records), Rejected: res.Rejected}
	if strict {
		if err := res.Check(); err != nil {
			return report, fmt.Errorf("import %s: %w", source, err)
		}
	}

	if bi, ok := s.store.(batchImporter); ok {
		batch, err := bi.Import(ctx, source, res)
		if err != nil {
			return report, fmt.Errorf("store %s: %w", source, err)
		}
		report.BatchID = batch.ID
	} else {
		id, err := s.store.ReplaceRecords(ctx, source, res.Records)
		if err != nil {
			return report, fmt.Errorf("store %s: %w", source, err)
		}
		report.BatchID = id
	}

	s.logger.LogImport(ctx, source, report.Records, len(report.Rejected))
	for _, re := range res.Rejected {
		slog.DebugContext(ctx, "Row rejected",
			applog.FieldSource, source,
			applog.FieldLine, re.Line,
			"column", re.Column,
			"value", re.Value,
			applog.FieldError, re.Err)
	}

	if s.onImport != nil {
		s.onImport()
	}
	return report, nil
}
