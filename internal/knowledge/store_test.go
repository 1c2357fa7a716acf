package knowledge

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/backend/internal/embedding"
	"github.com/carelink/backend/internal/triage"
)

func newTestStore(t *testing.T, floor float64) *Store {
	t.Helper()
	return NewStore(embedding.NewHashEmbedder(0), floor)
}

func TestStore_QueryRespectsRelevanceFloor(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0.6)

	require.NoError(t, s.Index(ctx, "fever", "Fever",
		"fever high temperature chills rest fluids", []string{"fever", "chills"}, triage.Routine))
	require.NoError(t, s.Index(ctx, "cholesterol", "Cholesterol",
		"cholesterol ldl hdl lipid statin diet", []string{"cholesterol"}, triage.Routine))
	s.Seal()

	results, err := s.Query(ctx, "completely unrelated quantum chromodynamics lattice", 5)
	require.NoError(t, err)
	for _, r := range results {
		assert.Greater(t, r.Similarity, 0.6, "result %q below floor", r.Topic)
	}
}

func TestStore_QueryOrderingAndLimit(t *testing.T) {
	ctx := context.Background()
	// Floor of zero so overlap-based hash similarity surfaces both entries.
	s := newTestStore(t, 0)

	require.NoError(t, s.Index(ctx, "fever", "Fever",
		"fever high temperature chills", []string{"fever"}, triage.Routine))
	require.NoError(t, s.Index(ctx, "headache", "Headache",
		"headache migraine head pain", []string{"headache"}, triage.Routine))
	s.Seal()

	results, err := s.Query(ctx, "fever high temperature chills", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Fever", results[0].Topic)

	all, err := s.Query(ctx, "fever high temperature chills headache", 10)
	require.NoError(t, err)
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Similarity, all[i].Similarity)
	}
}

func TestStore_IndexAfterSealFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0.6)
	s.Seal()

	err := s.Index(ctx, "x", "X", "content", nil, triage.Routine)
	assert.Error(t, err)
}

func TestSeedStore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, 0.6)

	require.NoError(t, SeedStore(ctx, s))
	assert.Equal(t, len(seedCorpus), s.Len())

	// Sealed after seeding.
	assert.Error(t, s.Index(ctx, "x", "X", "content", nil, triage.Routine))
}

func TestDynamicIndex_SessionScoping(t *testing.T) {
	ctx := context.Background()
	d := NewDynamicIndex(embedding.NewHashEmbedder(0), 0)

	require.NoError(t, d.Add(ctx, "sess-a", "r1", "labs.txt",
		"hemoglobin 9.2 g/dL low iron deficiency"))

	hits, err := d.Query(ctx, "sess-a", "what does my hemoglobin result mean", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, hits)

	other, err := d.Query(ctx, "sess-b", "what does my hemoglobin result mean", 3)
	require.NoError(t, err)
	assert.Empty(t, other, "report context must not leak across sessions")

	d.Drop("sess-a")
	gone, err := d.Query(ctx, "sess-a", "hemoglobin", 3)
	require.NoError(t, err)
	assert.Empty(t, gone)
}

func TestDynamicIndex_ReportClearsDefaultFloor(t *testing.T) {
	ctx := context.Background()
	// Shipped default floor for report context.
	d := NewDynamicIndex(embedding.NewHashEmbedder(0), 0.25)

	require.NoError(t, d.Add(ctx, "sess-a", "r1", "blood-test.txt",
		"Blood test results.\nHemoglobin 9.2 g/dL (low)\nReference range: 13.5-17.5 g/dL\n"))

	hits, err := d.Query(ctx, "sess-a", "what does my hemoglobin result mean?", 3)
	require.NoError(t, err)
	require.NotEmpty(t, hits, "an attached report must surface for a question naming its analyte")
	assert.Greater(t, hits[0].Similarity, 0.25)
	assert.Contains(t, hits[0].Content, "Hemoglobin 9.2")
}

func TestDynamicIndex_UnrelatedQueryStaysBelowFloor(t *testing.T) {
	ctx := context.Background()
	d := NewDynamicIndex(embedding.NewHashEmbedder(0), 0.25)

	require.NoError(t, d.Add(ctx, "sess-a", "r1", "labs.txt",
		"Hemoglobin 9.2 g/dL low"))

	hits, err := d.Query(ctx, "sess-a", "recommend stretches for ankle sprain recovery", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestQueryTerms(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		terms []string
	}{
		{"filler words dropped", "what does my hemoglobin result mean?", []string{"hemoglobin", "result"}},
		{"duplicates collapsed", "glucose glucose GLUCOSE", []string{"glucose"}},
		{"all filler", "is it ok?", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.terms, queryTerms(tt.text))
		})
	}
}

func TestTermOverlap(t *testing.T) {
	content := "Blood test results. Hemoglobin 9.2 g/dL (low)"

	assert.Equal(t, 1.0, termOverlap([]string{"hemoglobin", "result"}, content))
	assert.Equal(t, 0.5, termOverlap([]string{"hemoglobin", "platelets"}, content))
	assert.Equal(t, 0.0, termOverlap(nil, content))
}

func TestChainFallsBackToHash(t *testing.T) {
	logger := slog.Default()
	chain := embedding.NewChain(nil, embedding.NewHashEmbedder(0), logger)

	vec, err := chain.Embed(context.Background(), "fever and chills")
	require.NoError(t, err)
	assert.Len(t, vec, embedding.DefaultDimension)
}
