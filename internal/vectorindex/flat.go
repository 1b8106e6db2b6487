package vectorindex

import (
	"context"
	"sort"
	"sync"

	"clinical-intel/internal/embedding"
)

// Flat is the exact reference index: a linear scan over every stored vector.
type Flat struct {
	mu      sync.RWMutex
	vectors map[int64][]float32
}

func NewFlat() *Flat {
	return &Flat{vectors: make(map[int64][]float32)}
}

func (f *Flat) Upsert(_ context.Context, id int64, vec []float32) error {
	cp := append([]float32(nil), vec...)
	f.mu.Lock()
	f.vectors[id] = cp
	f.mu.Unlock()
	return nil
}

func (f *Flat) Remove(_ context.Context, id int64) error {
	f.mu.Lock()
	delete(f.vectors, id)
	f.mu.Unlock()
	return nil
}

func (f *Flat) Get(_ context.Context, id int64) ([]float32, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.vectors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]float32(nil), v...), nil
}

func (f *Flat) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.vectors)
}

func (f *Flat) Nearest(ctx context.Context, query []float32, minSimilarity float64, limit int) ([]Neighbor, error) {
	f.mu.RLock()
	out := make([]Neighbor, 0, len(f.vectors))
	for id, vec := range f.vectors {
		sim := embedding.CosineSimilarity(query, vec)
		if sim >= minSimilarity {
			out = append(out, Neighbor{ID: id, Similarity: sim})
		}
	}
	f.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	SortNeighbors(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SortNeighbors orders by similarity descending, then id ascending.
func SortNeighbors(ns []Neighbor) {
	sort.Slice(ns, func(i, j int) bool {
		if ns[i].Similarity != ns[j].Similarity {
			return ns[i].Similarity > ns[j].Similarity
		}
		return ns[i].ID < ns[j].ID
	})
}
