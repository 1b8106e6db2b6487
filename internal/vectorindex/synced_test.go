package vectorindex

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type storedVector struct {
	vec       []float32
	updatedAt time.Time
}

// memorySource stands in for the embeddings table written by another process.
type memorySource struct {
	mu      sync.Mutex
	rows    map[int64]storedVector
	gets    int
	sinces  []time.Time
	failing bool
}

func newMemorySource() *memorySource {
	return &memorySource{rows: make(map[int64]storedVector)}
}

func (m *memorySource) put(id int64, vec []float32, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[id] = storedVector{vec: vec, updatedAt: at}
}

func (m *memorySource) Get(_ context.Context, id int64) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	r, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r.vec, nil
}

func (m *memorySource) ChangedSince(_ context.Context, since time.Time, fn func(int64, []float32, time.Time) error) error {
	m.mu.Lock()
	m.sinces = append(m.sinces, since)
	if m.failing {
		m.mu.Unlock()
		return errors.New("connection reset")
	}
	changed := make(map[int64]storedVector)
	for id, r := range m.rows {
		if !r.updatedAt.Before(since) {
			changed[id] = r
		}
	}
	m.mu.Unlock()

	for id, r := range changed {
		if err := fn(id, r.vec, r.updatedAt); err != nil {
			return err
		}
	}
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestSynced(src Source, interval time.Duration) (*Synced, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewSynced(src, interval, zap.NewNop())
	s.now = clock.now
	return s, clock
}

func TestSynced_GetFallsBackToSource(t *testing.T) {
	ctx := context.Background()
	src := newMemorySource()
	idx, _ := newTestSynced(src, 0)

	_, err := idx.Refresh(ctx)
	require.NoError(t, err)
	assert.Zero(t, idx.Len())

	// written after startup by a separate reindex process
	src.put(7, []float32{0, 1}, time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC))

	vec, err := idx.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, vec)
	assert.Equal(t, 1, idx.Len())

	_, err = idx.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, src.gets, "second lookup is served from memory")

	_, err = idx.Get(ctx, 8)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSynced_NearestPicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	src := newMemorySource()
	base := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	src.put(1, []float32{1, 0}, base)
	idx, clock := newTestSynced(src, 10*time.Second)

	n, err := idx.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	src.put(2, []float32{0.9, 0.1}, base.Add(time.Hour))

	got, err := idx.Nearest(ctx, []float32{1, 0}, 0.5, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1, "within the interval the index is not refreshed")

	clock.advance(11 * time.Second)
	got, err = idx.Nearest(ctx, []float32{1, 0}, 0.5, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestSynced_RefreshAdvancesWatermarkWithOverlap(t *testing.T) {
	ctx := context.Background()
	src := newMemorySource()
	latest := time.Date(2026, 3, 1, 11, 30, 0, 0, time.UTC)
	src.put(1, []float32{1, 0}, latest.Add(-time.Hour))
	src.put(2, []float32{0, 1}, latest)
	idx, _ := newTestSynced(src, 0)

	_, err := idx.Refresh(ctx)
	require.NoError(t, err)
	n, err := idx.Refresh(ctx)
	require.NoError(t, err)

	require.Len(t, src.sinces, 2)
	assert.True(t, src.sinces[0].IsZero())
	assert.Equal(t, latest.Add(-refreshOverlap), src.sinces[1])
	assert.Equal(t, 1, n, "only the row inside the overlap window is re-read")
}

func TestSynced_RefreshFailureKeepsServing(t *testing.T) {
	ctx := context.Background()
	src := newMemorySource()
	src.put(1, []float32{1, 0}, time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC))
	idx, clock := newTestSynced(src, time.Second)

	_, err := idx.Refresh(ctx)
	require.NoError(t, err)

	src.failing = true
	clock.advance(2 * time.Second)
	got, err := idx.Nearest(ctx, []float32{1, 0}, 0.5, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = idx.Refresh(ctx)
	assert.Error(t, err)
}
