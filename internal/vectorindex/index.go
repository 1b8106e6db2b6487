// Package vectorindex answers "which patients are closest to this vector".
package vectorindex

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get for an id with no stored vector.
var ErrNotFound = errors.New("vector not found")

// Neighbor is one index hit.
type Neighbor struct {
	ID         int64
	Similarity float64
}

// Index stores one vector per id. Nearest returns neighbours with cosine
// similarity >= minSimilarity, most similar first, equal scores ordered by
// ascending id. A limit <= 0 means no cap.
type Index interface {
	Upsert(ctx context.Context, id int64, vec []float32) error
	Remove(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) ([]float32, error)
	Nearest(ctx context.Context, query []float32, minSimilarity float64, limit int) ([]Neighbor, error)
}
