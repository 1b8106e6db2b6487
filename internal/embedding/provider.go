// Package embedding turns clinical text into fixed-length vectors and compares them.
package embedding

import (
	"context"
	"fmt"

	"clinical-intel/pkg/config"

	"go.uber.org/zap"
)

// Embedder produces one embedding per input string. Implementations must be
// deterministic for identical text and safe for concurrent use.
type Embedder interface {
	// Name identifies the model, stored next to every persisted vector.
	Name() string
	Dimensions() int
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// EmbedOne is a convenience wrapper for a single text.
func EmbedOne(ctx context.Context, e Embedder, text string) ([]float32, error) {
	vecs, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embedder %s returned %d vectors for 1 input", e.Name(), len(vecs))
	}
	return vecs[0], nil
}

// NewFromConfig builds the configured provider, adapts it to the schema
// dimension, guards remote providers with a circuit breaker and puts the
// cache in front of everything.
func NewFromConfig(cfg config.EmbeddingConfig, giga config.GigaChatConfig, tokens TokenSource, cache Cache, logger *zap.Logger) (Embedder, error) {
	var base Embedder
	switch cfg.Provider {
	case "hashing", "":
		base = NewHashingEmbedder(cfg.Dimensions)
	case "gigachat":
		if tokens == nil {
			return nil, fmt.Errorf("gigachat embeddings require an access token source")
		}
		remote := NewGigaChatEmbedder(GigaChatOptions{
			Model:              cfg.Model,
			Dimensions:         cfg.Dimensions,
			Timeout:            cfg.HTTPTimeout,
			InsecureSkipVerify: giga.InsecureSkipVerify,
		}, tokens, logger)
		base = NewBreakerEmbedder(WrapToDims(remote, cfg.Dimensions), BreakerSettings{
			FailureRatio: cfg.BreakerFailureRatio,
			MinRequests:  cfg.BreakerMinRequests,
			OpenTimeout:  cfg.BreakerOpenTimeout,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}

	if cache == nil {
		return base, nil
	}
	return NewCachedEmbedder(base, cache, logger), nil
}
