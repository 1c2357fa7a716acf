package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultDimension matches the all-minilm family so hash vectors and
// hosted vectors are interchangeable.
const DefaultDimension = 384

// HashEmbedder is a deterministic local embedder. It requires no network
// and no quota, so it is the default operating mode: the same text always
// produces the same L2-normalized vector, which keeps similarity
// comparisons stable across process restarts.
//
// Scheme: whitespace tokenization, FNV-1a hash of each token to a bucket,
// position-decayed weight 1/(position+1) accumulated per bucket, then
// L2 normalization.
type HashEmbedder struct {
	dim int
}

var _ Embedder = (*HashEmbedder)(nil)

// NewHashEmbedder creates a hash embedder of the given dimension.
// A non-positive dimension falls back to DefaultDimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

// Embed produces the deterministic vector for text. Empty or
// whitespace-only text yields the zero vector.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dim)

	tokens := strings.Fields(strings.ToLower(text))
	for pos, tok := range tokens {
		hasher := fnv.New32a()
		hasher.Write([]byte(tok))
		bucket := int(hasher.Sum32()) % h.dim
		if bucket < 0 {
			bucket += h.dim
		}
		vec[bucket] += float32(1.0 / float64(pos+1))
	}

	normalize(vec)
	return vec, nil
}

// Model returns the backend name.
func (h *HashEmbedder) Model() string { return "local-hash" }

// Dimension returns the vector length.
func (h *HashEmbedder) Dimension() int { return h.dim }

// normalize scales vec to unit length in place. The zero vector is left
// unchanged.
func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	mag := math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / mag)
	}
}
