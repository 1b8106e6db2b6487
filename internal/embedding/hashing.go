package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/twmb/murmur3"
)

// HashingEmbedder is a local, dependency-free embedder based on signed feature
// hashing of unigrams and bigrams. It stands in for a hosted model in demos and
// tests: identical text always yields the identical unit vector, and notes that
// share vocabulary land close together.
type HashingEmbedder struct {
	dims int
}

func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = 256
	}
	return &HashingEmbedder{dims: dims}
}

func (h *HashingEmbedder) Name() string    { return "hashing-murmur3" }
func (h *HashingEmbedder) Dimensions() int { return h.dims }

func (h *HashingEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	out := make([][]float32, len(inputs))
	for i, text := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = h.vector(text)
	}
	return out, nil
}

func (h *HashingEmbedder) vector(text string) []float32 {
	v := make([]float32, h.dims)
	tokens := tokenize(text)
	for i, tok := range tokens {
		h.add(v, tok, 1)
		if i > 0 {
			h.add(v, tokens[i-1]+" "+tok, 0.5)
		}
	}
	Normalize(v)
	return v
}

func (h *HashingEmbedder) add(v []float32, feature string, weight float32) {
	sum := murmur3.Sum64([]byte(feature))
	idx := int(sum % uint64(h.dims))
	if sum>>63 == 1 {
		weight = -weight
	}
	v[idx] += weight
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) > 1 && !stopwords[f] {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

var stopwords = map[string]bool{
	"the": true, "and": true, "of": true, "in": true, "to": true, "with": true,
	"is": true, "was": true, "for": true, "on": true, "at": true, "by": true,
	"an": true, "as": true, "are": true, "be": true, "has": true, "had": true,
	"his": true, "her": true, "no": true, "not": true, "pt": true,
}
