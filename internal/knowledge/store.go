// Package knowledge holds the in-memory semantic store used for
// retrieval-augmented responses.
//
// The static store is built once at startup and read-only afterwards.
// Retrieval is a brute-force cosine scan, which is fine while the corpus
// stays small; an ANN index can replace the scan behind the same contract
// if it ever grows.
package knowledge

import (
	"context"
	"fmt"
	"sort"

	"github.com/carelink/backend/internal/embedding"
	"github.com/carelink/backend/internal/triage"
)

// Entry is one indexed unit of medical knowledge. Immutable after indexing.
type Entry struct {
	ID       string
	Topic    string
	Content  string
	Symptoms []string
	Severity triage.Severity
	Vector   []float32
}

// Result is a transient retrieval hit, never persisted.
type Result struct {
	Topic      string          `json:"topic"`
	Content    string          `json:"content"`
	Symptoms   []string        `json:"symptoms"`
	Severity   triage.Severity `json:"severity"`
	Similarity float64         `json:"similarity"`
}

// Store is the process-wide knowledge collection.
type Store struct {
	embedder       embedding.Embedder
	entries        []Entry
	relevanceFloor float64
	sealed         bool
}

// NewStore creates an empty store. Index the corpus, then Seal it before
// serving queries.
func NewStore(embedder embedding.Embedder, relevanceFloor float64) *Store {
	return &Store{
		embedder:       embedder,
		relevanceFloor: relevanceFloor,
	}
}

// Index adds an entry to the store. Valid only before Seal.
func (s *Store) Index(ctx context.Context, id, topic, content string, symptoms []string, severity triage.Severity) error {
	if s.sealed {
		return fmt.Errorf("knowledge store is sealed")
	}

	// Embed topic, content and symptoms together so queries phrased as
	// either symptoms or questions land near the entry.
	text := topic + " " + content
	for _, sym := range symptoms {
		text += " " + sym
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("embed entry %s: %w", id, err)
	}

	s.entries = append(s.entries, Entry{
		ID:       id,
		Topic:    topic,
		Content:  content,
		Symptoms: symptoms,
		Severity: severity,
		Vector:   vec,
	})
	return nil
}

// Seal marks the store read-only. Queries are only valid after sealing.
func (s *Store) Seal() { s.sealed = true }

// Len returns the number of indexed entries.
func (s *Store) Len() int { return len(s.entries) }

// Query embeds text and returns up to limit entries above the relevance
// floor, sorted by descending similarity. Low-confidence matches are
// dropped entirely rather than returned as noise.
func (s *Store) Query(ctx context.Context, text string, limit int) ([]Result, error) {
	qvec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return scan(qvec, s.entries, limit, s.relevanceFloor), nil
}

// scan is the shared brute-force ranking over a slice of entries.
func scan(qvec []float32, entries []Entry, limit int, floor float64) []Result {
	var results []Result
	for _, e := range entries {
		sim := embedding.Cosine(qvec, e.Vector)
		if sim <= floor {
			continue
		}
		results = append(results, Result{
			Topic:      e.Topic,
			Content:    e.Content,
			Symptoms:   e.Symptoms,
			Severity:   e.Severity,
			Similarity: sim,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
