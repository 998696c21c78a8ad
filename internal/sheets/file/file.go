// Package file reads datasets from local CSV or XLSX files.
package file

import (
	"context"
	"path/filepath"

	"socialspend/internal/ingest"
	ports "socialspend/internal/sheets"
)

var _ ports.RecordSource = (*Source)(nil)

// Source is one dataset file. The format follows the extension.
type Source struct {
	path string
}

func New(path string) *Source {
	return &Source{path: path}
}

func (s *Source) Name() string { return filepath.Base(s.path) }

func (s *Source) Load(ctx context.Context) (ingest.Result, error) {
	if err := ctx.Err(); err != nil {
		return ingest.Result{}, err
	}
	return ingest.ReadFile(s.path)
}
