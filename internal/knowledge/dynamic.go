package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/carelink/backend/internal/embedding"
	"github.com/carelink/backend/internal/triage"
)

// DynamicIndex holds per-session report context. Unlike the static Store
// it accepts entries at request time, so access is mutex-guarded. Entries
// are grouped by session and queried only within that session.
//
// Reports are scored by the better of embedding similarity and lexical
// term overlap, and ranked against their own floor rather than the
// corpus floor. A report the user explicitly attached is trusted
// context, not a noise candidate: a short question naming an analyte
// ("what does my hemoglobin result mean?") must surface the report even
// when the embedding places the two far apart.
type DynamicIndex struct {
	mu             sync.RWMutex
	embedder       embedding.Embedder
	bySession      map[string][]Entry
	relevanceFloor float64
}

// NewDynamicIndex creates an empty per-session index with its own
// relevance floor.
func NewDynamicIndex(embedder embedding.Embedder, relevanceFloor float64) *DynamicIndex {
	return &DynamicIndex{
		embedder:       embedder,
		bySession:      make(map[string][]Entry),
		relevanceFloor: relevanceFloor,
	}
}

// Add indexes extracted report text under a session. Placeholder text
// must be filtered out by the caller before indexing.
func (d *DynamicIndex) Add(ctx context.Context, sessionID, reportID, filename, content string) error {
	vec, err := d.embedder.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed report %s: %w", reportID, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.bySession[sessionID] = append(d.bySession[sessionID], Entry{
		ID:       reportID,
		Topic:    "Uploaded report: " + filename,
		Content:  content,
		Severity: triage.Routine,
		Vector:   vec,
	})
	return nil
}

// Query ranks a session's report entries against text using hybrid
// scoring: max(cosine similarity, query term overlap), same descending
// order and limit handling as the static store.
func (d *DynamicIndex) Query(ctx context.Context, sessionID, text string, limit int) ([]Result, error) {
	qvec, err := d.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	terms := queryTerms(text)

	d.mu.RLock()
	entries := d.bySession[sessionID]
	d.mu.RUnlock()

	var results []Result
	for _, e := range entries {
		score := embedding.Cosine(qvec, e.Vector)
		if lex := termOverlap(terms, e.Content); lex > score {
			score = lex
		}
		if score <= d.relevanceFloor {
			continue
		}
		results = append(results, Result{
			Topic:      e.Topic,
			Content:    e.Content,
			Symptoms:   e.Symptoms,
			Severity:   e.Severity,
			Similarity: score,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Drop removes all entries for a session. Called on session deletion.
func (d *DynamicIndex) Drop(sessionID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.bySession, sessionID)
}

// minTermLen filters filler words; shorter tokens carry no topical
// signal worth matching on.
const minTermLen = 5

// queryTerms extracts the distinct content-bearing terms of a query.
func queryTerms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool)
	var terms []string
	for _, f := range fields {
		if len(f) < minTermLen || seen[f] {
			continue
		}
		seen[f] = true
		terms = append(terms, f)
	}
	return terms
}

// termOverlap is the fraction of query terms found in content. Substring
// matching keeps simple inflections ("result" / "results") together.
func termOverlap(terms []string, content string) float64 {
	if len(terms) == 0 {
		return 0
	}
	lower := strings.ToLower(content)
	matched := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
