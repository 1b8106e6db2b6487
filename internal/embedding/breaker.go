package embedding

import (
	"context"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

type BreakerSettings struct {
	FailureRatio float64
	MinRequests  uint32
	OpenTimeout  time.Duration
}

// BreakerEmbedder fails fast while the remote provider is unhealthy instead of
// letting every indexing worker wait out its own timeout.
type BreakerEmbedder struct {
	inner Embedder
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerEmbedder(inner Embedder, s BreakerSettings, logger *zap.Logger) *BreakerEmbedder {
	if s.FailureRatio <= 0 {
		s.FailureRatio = 0.6
	}
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= s.MinRequests && ratio >= s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Embedding circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &BreakerEmbedder{inner: inner, cb: cb}
}

func (b *BreakerEmbedder) Name() string    { return b.inner.Name() }
func (b *BreakerEmbedder) Dimensions() int { return b.inner.Dimensions() }

func (b *BreakerEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Embed(ctx, inputs)
	})
	if err != nil {
		return nil, err
	}
	return res.([][]float32), nil
}

// State exposes the breaker state for health reporting.
func (b *BreakerEmbedder) State() gobreaker.State {
	return b.cb.State()
}
