package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carelink/backend/internal/knowledge"
	"github.com/carelink/backend/internal/triage"
)

func TestFallback_MatchesSymptomFamily(t *testing.T) {
	resp := Fallback("I've had a fever since last night", nil)
	assert.NotEmpty(t, resp)
	assert.Contains(t, resp, "fever")
	assert.Contains(t, strings.ToLower(resp), "seek medical care")
}

func TestFallback_ChestPainIsConservative(t *testing.T) {
	resp := Fallback("mild chest pain after jogging", nil)
	assert.Contains(t, strings.ToLower(resp), "emergency")
}

func TestFallback_GenericWhenNoFamilyMatches(t *testing.T) {
	resp := Fallback("my pinky toe feels odd", nil)
	assert.NotEmpty(t, resp)
	assert.Contains(t, strings.ToLower(resp), "pharmacist")
}

func TestFallback_IncludesRetrievedContext(t *testing.T) {
	retrieved := []knowledge.Result{
		{Topic: "Anemia and low hemoglobin", Content: "Hemoglobin below range indicates anemia. More detail here.", Severity: triage.Routine, Similarity: 0.8},
	}
	resp := Fallback("what does my hemoglobin mean", retrieved)
	assert.Contains(t, resp, "Anemia and low hemoglobin")
}

func TestEnsureDisclaimer_AppendsOnce(t *testing.T) {
	out := EnsureDisclaimer("Drink fluids and rest.")
	assert.True(t, strings.HasSuffix(out, Disclaimer))
	assert.Equal(t, 1, strings.Count(out, Disclaimer))
}

func TestEnsureDisclaimer_Idempotent(t *testing.T) {
	once := EnsureDisclaimer("Drink fluids and rest.")
	twice := EnsureDisclaimer(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, 1, strings.Count(twice, Disclaimer))
}

func TestEnsureDisclaimer_EmptyInputStillNonEmpty(t *testing.T) {
	out := EnsureDisclaimer("")
	assert.Contains(t, out, Disclaimer)
}

func TestEnsureDisclaimer_MidTextCopyMovedToEnd(t *testing.T) {
	out := EnsureDisclaimer("Rest well.\n\n" + Disclaimer + "\n\nAlso stay hydrated.")
	assert.True(t, strings.HasSuffix(out, Disclaimer))
	assert.Equal(t, 1, strings.Count(out, Disclaimer))
	assert.Contains(t, out, "Also stay hydrated.")
}
