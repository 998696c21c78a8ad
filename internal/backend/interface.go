// Package backend builds the dataset sources and store selected by
// DATA_BACKEND.
package backend

import (
	"context"

	"socialspend/internal/amqp"
	"socialspend/internal/sheets"
	"socialspend/internal/storage"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult holds everything a backend provides. Store is nil for
// read-only backends; Repository and Publisher are only set for sqlite.
type BackendResult struct {
	Type       BackendType
	Sources    []sheets.RecordSource
	Store      sheets.RecordStore
	Repository *storage.SQLiteRepository
	Publisher  *amqp.Client
	Cleanup    CleanupFunc
}

// Close runs Cleanup when set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// csv and xlsx
	DataFiles []string

	// sqlite
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// sheets
	GoogleSpreadsheetID   string
	GoogleSheetRange      string
	GoogleCredentialsFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	CSVBackend    BackendType = "csv"
	XLSXBackend   BackendType = "xlsx"
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, CSVBackend, XLSXBackend, SQLiteBackend, SheetsBackend:
		return true
	default:
		return false
	}
}
