package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"socialspend/internal/cache"
	"socialspend/internal/core"
	"socialspend/internal/ingest"
	applog "socialspend/internal/log"
	"socialspend/internal/sheets"
)

const snapshotKeyPrefix = "dataset@"

// Snapshot is the merged dataset of every configured source.
type Snapshot struct {
	Records  []core.SpendRecord
	Rejected []SourceRejection
	Sources  []string
	LoadedAt time.Time
}

// SourceRejection ties a quarantined row to the source it came from.
type SourceRejection struct {
	Source string
	ingest.RowError
}

// DatasetService loads the dataset from its sources and caches the merged
// snapshot. Aggregates are always recomputed by callers.
type DatasetService struct {
	sources []sheets.RecordSource
	cache   *cache.LRUCache[Snapshot]
	logger  *applog.Logger
	now     func() time.Time

	// generation is bumped by Invalidate. Snapshots are cached under the
	// generation their load started in, so a load that overlaps an import
	// never serves the pre-import dataset afterwards.
	generation atomic.Uint64
}

// NewDatasetService builds a service over sources. A nil cache loads on
// every call.
func NewDatasetService(sources []sheets.RecordSource, snapshots *cache.LRUCache[Snapshot], logger *applog.Logger) *DatasetService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DatasetService{
		sources: sources,
		cache:   snapshots,
		logger:  logger.WithComponent(applog.ComponentDataset),
		now:     time.Now,
	}
}

// SourceNames lists the configured sources in merge order.
func (s *DatasetService) SourceNames() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// Snapshot returns the cached dataset or loads it.
func (s *DatasetService) Snapshot(ctx context.Context) (Snapshot, error) {
	if s.cache == nil {
		return s.Load(ctx)
	}
	return s.cache.GetOrLoad(ctx, snapshotKey(s.generation.Load()), s.Load)
}

func snapshotKey(gen uint64) string {
	return snapshotKeyPrefix + strconv.FormatUint(gen, 10)
}

// Records is a shorthand for Snapshot(ctx).Records.
func (s *DatasetService) Records(ctx context.Context) ([]core.SpendRecord, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Records, nil
}

// Invalidate drops the cached snapshot. Loads already in flight finish for
// their callers but are not served to later ones.
func (s *DatasetService) Invalidate() {
	old := s.generation.Add(1) - 1
	if s.cache != nil {
		s.cache.Delete(snapshotKey(old))
	}
}

// Load reads every source in parallel and concatenates the results in source
// order. The first failing source cancels the rest.
func (s *DatasetService) Load(ctx context.Context) (Snapshot, error) {
	if len(s.sources) == 0 {
		return Snapshot{}, errors.New("no dataset sources configured")
	}

	results := make([]ingest.Result, len(s.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			res, err := src.Load(gctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", src.Name(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "Dataset load failed", applog.FieldError, err)
		return Snapshot{}, err
	}

	snap := Snapshot{Sources: s.SourceNames(), LoadedAt: s.now()}
	for i, res := range results {
		snap.Records = append(snap.Records, res.Records...)
		for _, re := range res.Rejected {
			snap.Rejected = append(snap.Rejected, SourceRejection{Source: snap.Sources[i], RowError: re})
		}
	}

	s.logger.InfoContext(ctx, "Dataset loaded",
		applog.FieldSource, strings.Join(snap.Sources, ","),
		applog.FieldRecords, len(snap.Records),
		applog.FieldRejected, len(snap.Rejected))
	return snap, nil
}
