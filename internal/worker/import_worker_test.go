package worker

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"socialspend/internal/amqp"
	"socialspend/internal/services"
)

type fakeImporter struct {
	paths      []string
	localPaths []string
	err        error
}

func (f *fakeImporter) ImportFile(_ context.Context, path, source string, _ bool) (services.ImportReport, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return services.ImportReport{}, f.err
	}
	return services.ImportReport{Source: source, BatchID: int64(len(f.paths)), Records: 3}, nil
}

func (f *fakeImporter) ImportLocalFile(_ context.Context, path, source string, _ bool) (services.ImportReport, error) {
	f.localPaths = append(f.localPaths, path)
	if f.err != nil {
		return services.ImportReport{}, f.err
	}
	return services.ImportReport{Source: source, BatchID: int64(len(f.localPaths)), Records: 3}, nil
}

type fakeConsumer struct {
	msgs []*amqp.ImportRequest
	errs []error
}

func (c *fakeConsumer) ConsumeImports(ctx context.Context, handler func(context.Context, *amqp.ImportRequest) error) error {
	for _, m := range c.msgs {
		c.errs = append(c.errs, handler(ctx, m))
	}
	return context.Canceled
}

func TestHandleImportRequest(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		importErr error
		wantErr   bool
	}{
		{name: "imports file", path: "spend.csv"},
		{name: "drops missing file", path: "gone.csv", importErr: &fs.PathError{Op: "lstat", Path: "gone.csv", Err: fs.ErrNotExist}},
		{name: "drops path outside import dir", path: "/etc/passwd", importErr: fmt.Errorf("%w: %q", services.ErrOutsideImportDir, "/etc/passwd")},
		{name: "import failure is returned", path: "spend.csv", importErr: errors.New("db locked"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := &fakeImporter{err: tt.importErr}
			w := NewImportWorker(imp)
			err := w.HandleImportRequest(context.Background(), amqp.NewImportRequest(tt.path, "", false))
			if (err != nil) != tt.wantErr {
				t.Fatalf("HandleImportRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(imp.paths) != 1 || imp.paths[0] != tt.path {
				t.Errorf("importer paths = %v, want [%s]", imp.paths, tt.path)
			}
			if len(imp.localPaths) != 0 {
				t.Errorf("queued request bypassed the import directory: %v", imp.localPaths)
			}
		})
	}
}

func TestRun_StopsCleanlyOnCancel(t *testing.T) {
	imp := &fakeImporter{}
	consumer := &fakeConsumer{msgs: []*amqp.ImportRequest{amqp.NewImportRequest("spend.csv", "q1", false)}}

	if err := NewImportWorker(imp).Run(context.Background(), consumer); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(consumer.errs) != 1 || consumer.errs[0] != nil {
		t.Fatalf("unexpected handler results: %v", consumer.errs)
	}
}

func TestStartupImport(t *testing.T) {
	imp := &fakeImporter{}
	imported, failed := NewImportWorker(imp).StartupImport(context.Background(), []string{"/srv/a.csv", "b.xlsx"})
	if imported != 2 || failed != 0 {
		t.Fatalf("imported=%d failed=%d", imported, failed)
	}
	if len(imp.localPaths) != 2 || len(imp.paths) != 0 {
		t.Fatalf("startup files should import as local files, got local=%v confined=%v", imp.localPaths, imp.paths)
	}

	imp = &fakeImporter{err: errors.New("bad file")}
	imported, failed = NewImportWorker(imp).StartupImport(context.Background(), []string{"a.csv"})
	if imported != 0 || failed != 1 {
		t.Fatalf("imported=%d failed=%d", imported, failed)
	}
}
