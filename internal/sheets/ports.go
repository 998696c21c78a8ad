// Package sheets declares the ports through which datasets enter and leave
// the application. Adapters live in subpackages: memory, file, google.
package sheets

import (
	"context"

	"socialspend/internal/core"
	"socialspend/internal/ingest"
)

// Ports for outbound adapters.
type (
	// RecordSource loads a complete dataset. Rows the source could not
	// accept are reported in the result, not as an error.
	RecordSource interface {
		Load(ctx context.Context) (ingest.Result, error)
		// Name identifies the source in logs and import batches.
		Name() string
	}

	// RecordStore persists datasets. ReplaceRecords swaps the stored rows of
	// source for records atomically and returns the import batch id.
	RecordStore interface {
		ReplaceRecords(ctx context.Context, source string, records []core.SpendRecord) (batchID int64, err error)
		ListRecords(ctx context.Context) ([]core.SpendRecord, error)
	}
)
