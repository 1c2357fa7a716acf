// Package embedding provides text embedding generation with a hosted
// primary provider and a deterministic local fallback.
package embedding

import (
	"context"
	"math"
)

// Embedder turns text into a fixed-length vector. All implementations in
// this package produce vectors of the same dimension so they are
// interchangeable to callers.
type Embedder interface {
	// Embed generates an embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Model returns the name of the embedding backend.
	Model() string

	// Dimension returns the embedding vector dimension.
	Dimension() int
}

// Cosine computes cosine similarity between two vectors. It is defined as
// 0 when either vector has zero magnitude.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}
