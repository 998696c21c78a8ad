package memory

import (
	"context"
	"sync"

	"socialspend/internal/core"
	"socialspend/internal/ingest"
	ports "socialspend/internal/sheets"
)

var (
	_ ports.RecordSource = (*Store)(nil)
	_ ports.RecordStore  = (*Store)(nil)
)

// Store keeps datasets in memory, keyed by source name. Load and
// ListRecords return the sources in the order they were first written.
type Store struct {
	mu      sync.Mutex
	order   []string
	sources map[string][]core.SpendRecord
	batches int64
}

func New(records []core.SpendRecord) *Store {
	s := &Store{sources: make(map[string][]core.SpendRecord)}
	if len(records) > 0 {
		s.order = append(s.order, "memory")
		s.sources["memory"] = append([]core.SpendRecord(nil), records...)
	}
	return s
}

// NewSample returns a store seeded with SampleRecords.
func NewSample() *Store {
	return New(SampleRecords())
}

func (s *Store) Name() string { return "memory" }

// Load returns every stored record. Stored records were validated on the way
// in so nothing is ever rejected.
func (s *Store) Load(ctx context.Context) (ingest.Result, error) {
	records, err := s.ListRecords(ctx)
	return ingest.Result{Records: records}, err
}

func (s *Store) ListRecords(_ context.Context) ([]core.SpendRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.SpendRecord
	for _, name := range s.order {
		out = append(out, s.sources[name]...)
	}
	return out, nil
}

// ReplaceRecords validates every record before touching the store.
func (s *Store) ReplaceRecords(_ context.Context, source string, records []core.SpendRecord) (int64, error) {
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return 0, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sources[source]; !ok {
		s.order = append(s.order, source)
	}
	s.sources[source] = append([]core.SpendRecord(nil), records...)
	s.batches++
	return s.batches, nil
}
