package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// refreshOverlap re-reads rows written slightly before the watermark, which
// covers transactions that committed late and clock skew between writers.
const refreshOverlap = time.Minute

// Source is the durable vector store a Synced index catches up from.
type Source interface {
	Get(ctx context.Context, id int64) ([]float32, error)
	ChangedSince(ctx context.Context, since time.Time, fn func(id int64, vec []float32, updatedAt time.Time) error) error
}

// Synced is an exact Flat index that follows writes made by other processes.
// Queries pull rows changed since the last refresh at most once per interval,
// and a Get miss falls through to the source.
type Synced struct {
	flat     *Flat
	source   Source
	interval time.Duration
	now      func() time.Time
	logger   *zap.Logger

	mu        sync.Mutex // guards watermark and checked
	watermark time.Time
	checked   time.Time
}

// NewSynced returns an empty index; call Refresh to load it. An interval <= 0
// disables refreshing on queries.
func NewSynced(source Source, interval time.Duration, logger *zap.Logger) *Synced {
	return &Synced{
		flat:     NewFlat(),
		source:   source,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *Synced) Upsert(ctx context.Context, id int64, vec []float32) error {
	return s.flat.Upsert(ctx, id, vec)
}

func (s *Synced) Remove(ctx context.Context, id int64) error {
	return s.flat.Remove(ctx, id)
}

func (s *Synced) Get(ctx context.Context, id int64) ([]float32, error) {
	s.maybeRefresh(ctx)

	vec, err := s.flat.Get(ctx, id)
	if !errors.Is(err, ErrNotFound) {
		return vec, err
	}
	vec, err = s.source.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.flat.Upsert(ctx, id, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (s *Synced) Nearest(ctx context.Context, query []float32, minSimilarity float64, limit int) ([]Neighbor, error) {
	s.maybeRefresh(ctx)
	return s.flat.Nearest(ctx, query, minSimilarity, limit)
}

func (s *Synced) Len() int {
	return s.flat.Len()
}

// Refresh loads every vector changed since the previous refresh and returns
// how many rows it read.
func (s *Synced) Refresh(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Synced) refreshLocked(ctx context.Context) (int, error) {
	since := s.watermark
	if !since.IsZero() {
		since = since.Add(-refreshOverlap)
	}

	latest := s.watermark
	n := 0
	err := s.source.ChangedSince(ctx, since, func(id int64, vec []float32, updatedAt time.Time) error {
		n++
		if updatedAt.After(latest) {
			latest = updatedAt
		}
		return s.flat.Upsert(ctx, id, vec)
	})
	s.checked = s.now()
	if err != nil {
		return n, fmt.Errorf("failed to refresh index: %w", err)
	}
	s.watermark = latest
	return n, nil
}

// maybeRefresh never blocks a query behind another refresh.
func (s *Synced) maybeRefresh(ctx context.Context) {
	if s.interval <= 0 || !s.mu.TryLock() {
		return
	}
	defer s.mu.Unlock()
	if s.now().Sub(s.checked) < s.interval {
		return
	}
	if _, err := s.refreshLocked(ctx); err != nil {
		s.logger.Warn("Similarity index refresh failed", zap.Error(err))
	}
}
