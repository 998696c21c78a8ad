package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"socialspend/internal/core"
	"socialspend/internal/ingest"
	ports "socialspend/internal/sheets"

	_ "modernc.org/sqlite"
)

var (
	_ ports.RecordStore  = (*SQLiteRepository)(nil)
	_ ports.RecordSource = (*SQLiteRepository)(nil)
)

// ImportBatch records one dataset import.
type ImportBatch struct {
	ID         int64
	Source     string
	Records    int
	Rejected   int
	ImportedAt time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps SQLite from returning SQLITE_BUSY under the worker.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Name() string { return "sqlite" }

// Load returns every stored record in import order.
func (r *SQLiteRepository) Load(ctx context.Context) (ingest.Result, error) {
	records, err := r.ListRecords(ctx)
	if err != nil {
		return ingest.Result{}, err
	}
	return ingest.Result{Records: records}, nil
}

// ReplaceRecords implements sheets.RecordStore.
func (r *SQLiteRepository) ReplaceRecords(ctx context.Context, source string, records []core.SpendRecord) (int64, error) {
	batch, err := r.Import(ctx, source, ingest.Result{Records: records})
	if err != nil {
		return 0, err
	}
	return batch.ID, nil
}

// Import replaces the rows previously imported from source with res.Records
// in a single transaction and records the batch, rejected row count included.
func (r *SQLiteRepository) Import(ctx context.Context, source string, res ingest.Result) (ImportBatch, error) {
	for _, rec := range res.Records {
		if err := rec.Validate(); err != nil {
			return ImportBatch{}, fmt.Errorf("validate record: %w", err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportBatch{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	result, err := tx.ExecContext(ctx,
		`INSERT INTO import_batches (source, record_count, rejected_count, imported_at) VALUES (?, ?, ?, ?)`,
		source, len(res.Records), len(res.Rejected), now)
	if err != nil {
		return ImportBatch{}, fmt.Errorf("insert import batch: %w", err)
	}
	batchID, err := result.LastInsertId()
	if err != nil {
		return ImportBatch{}, fmt.Errorf("import batch id: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM spend_records WHERE source = ?`, source); err != nil {
		return ImportBatch{}, fmt.Errorf("delete previous records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO spend_records (batch_id, source, bank, year, month, platform, spend) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return ImportBatch{}, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range res.Records {
		if _, err := stmt.ExecContext(ctx, batchID, source, rec.Bank, rec.Year, rec.Month, rec.Platform, rec.Spend); err != nil {
			return ImportBatch{}, fmt.Errorf("insert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportBatch{}, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Dataset stored in SQLite",
		"batch_id", batchID,
		"source", source,
		"records", len(res.Records),
		"rejected", len(res.Rejected))

	return ImportBatch{
		ID:         batchID,
		Source:     source,
		Records:    len(res.Records),
		Rejected:   len(res.Rejected),
		ImportedAt: now,
	}, nil
}

// ListRecords implements sheets.RecordStore.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.SpendRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT bank, year, month, platform, spend FROM spend_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []core.SpendRecord
	for rows.Next() {
		var rec core.SpendRecord
		if err := rows.Scan(&rec.Bank, &rec.Year, &rec.Month, &rec.Platform, &rec.Spend); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// ListBatches returns the most recent import batches first.
func (r *SQLiteRepository) ListBatches(ctx context.Context, limit int) ([]ImportBatch, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, source, record_count, rejected_count, imported_at FROM import_batches ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var out []ImportBatch
	for rows.Next() {
		var b ImportBatch
		if err := rows.Scan(&b.ID, &b.Source, &b.Records, &b.Rejected, &b.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return out, nil
}

// CountRecords returns the number of stored records.
func (r *SQLiteRepository) CountRecords(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM spend_records`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}
