package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"clinical-intel/internal/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedEmbedder memoises vectors by (model, text) and collapses concurrent
// requests for the same batch of misses into one upstream call.
type CachedEmbedder struct {
	inner  Embedder
	cache  Cache
	group  singleflight.Group
	logger *zap.Logger
}

func NewCachedEmbedder(inner Embedder, cache Cache, logger *zap.Logger) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, logger: logger}
}

func (c *CachedEmbedder) Name() string    { return c.inner.Name() }
func (c *CachedEmbedder) Dimensions() int { return c.inner.Dimensions() }

func (c *CachedEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	keys := make([]string, len(inputs))

	var missIdx []int
	for i, text := range inputs {
		keys[i] = c.key(text)
		vec, ok, err := c.cache.Get(ctx, keys[i])
		if err != nil {
			// a broken cache degrades to a pass-through
			c.logger.Warn("Embedding cache read failed", zap.Error(err))
		}
		metrics.Default().IncEmbeddingCache(ok)
		if ok {
			out[i] = vec
			continue
		}
		missIdx = append(missIdx, i)
	}
	if len(missIdx) == 0 {
		return out, nil
	}

	missTexts := make([]string, len(missIdx))
	missKeys := make([]string, len(missIdx))
	for j, i := range missIdx {
		missTexts[j] = inputs[i]
		missKeys[j] = keys[i]
	}

	// Callers sharing the flight must not inherit the first caller's
	// cancellation; each one stops waiting on its own context instead.
	ch := c.group.DoChan(strings.Join(missKeys, ","), func() (interface{}, error) {
		return c.inner.Embed(context.WithoutCancel(ctx), missTexts)
	})
	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}
	vecs := res.Val.([][]float32)
	if len(vecs) != len(missIdx) {
		return nil, fmt.Errorf("embedder %s returned %d vectors for %d inputs", c.inner.Name(), len(vecs), len(missIdx))
	}

	for j, i := range missIdx {
		out[i] = append([]float32(nil), vecs[j]...)
		if err := c.cache.Set(ctx, keys[i], vecs[j]); err != nil {
			c.logger.Warn("Embedding cache write failed", zap.Error(err))
		}
	}
	return out, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return c.inner.Name() + ":" + hex.EncodeToString(sum[:])
}
