package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"crlf line endings", "a\r\nb\rc", "a\nb\nc"},
		{"blank line runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"space runs", "Hemoglobin    9.2   g/dL", "Hemoglobin 9.2 g/dL"},
		{"trailing whitespace", "line one   \nline two", "line one\nline two"},
		{"surrounding whitespace trimmed", "  \n text \n ", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestCorrectOCRErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"O after digit", "Glucose 5.O", "Glucose 5.0"},
		{"O before digit", "WBC O4", "WBC 04"},
		{"l after digit", "Platelets 25l", "Platelets 251"},
		{"I before digit", "RBC I2", "RBC 12"},
		{"unit spacing", "Hemoglobin 9.2 mg / dl", "Hemoglobin 9.2 mg/dL"},
		{"unit casing", "Urea 4.2 MMOL/L", "Urea 4.2 mmol/L"},
		{"value glued to unit", "Hemoglobin 9.2g/dL", "Hemoglobin 9.2 g/dL"},
		{"ordinary words untouched", "Low iron stores noted", "Low iron stores noted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CorrectOCRErrors(tt.input))
		})
	}
}

func TestScanLabValues(t *testing.T) {
	text := "Hemoglobin 9.2 g/dL (low)\nGlucose: 5.4 mmol/L\nHemoglobin repeat 9.3 g/dL\nNotes: fasting sample"
	values := ScanLabValues(text)

	assert.Len(t, values, 2) // repeat analyte deduplicated
	assert.Contains(t, values[0], "Hemoglobin")
	assert.Contains(t, values[0], "9.2")
	assert.Contains(t, values[1], "Glucose")
}

func TestScanLabValues_NoMatches(t *testing.T) {
	assert.Empty(t, ScanLabValues("Patient reports feeling well. No medication changes."))
}
