package embedding

import "context"

// WrapToDims adapts an embedder whose native size differs from the schema
// dimension. Longer vectors are truncated, shorter ones zero-padded, and the
// result is re-normalised so cosine scores stay comparable.
func WrapToDims(e Embedder, dims int) Embedder {
	if dims <= 0 {
		return e
	}
	return &dimsAdapter{inner: e, dims: dims}
}

type dimsAdapter struct {
	inner Embedder
	dims  int
}

func (a *dimsAdapter) Name() string    { return a.inner.Name() }
func (a *dimsAdapter) Dimensions() int { return a.dims }

func (a *dimsAdapter) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	vecs, err := a.inner.Embed(ctx, inputs)
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(vecs))
	for i, v := range vecs {
		out[i] = fitDims(v, a.dims)
	}
	return out, nil
}

func fitDims(v []float32, dims int) []float32 {
	out := make([]float32, dims)
	copy(out, v)
	if len(v) != dims {
		Normalize(out)
	}
	return out
}
