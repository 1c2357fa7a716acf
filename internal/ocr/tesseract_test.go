package ocr

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_RecognizeWithoutBinary(t *testing.T) {
	e := NewEngine("", 20, slog.Default())
	_, err := e.Recognize(context.Background(), "/tmp/whatever.png")
	assert.Error(t, err)
}

func TestProfiles_Distinct(t *testing.T) {
	// The two passes must actually differ in layout analysis, otherwise
	// the retry is a no-op.
	assert.NotEqual(t, DenseProfile.PSM, BlockProfile.PSM)
	assert.NotEmpty(t, BlockProfile.Whitelist)
	assert.Empty(t, DenseProfile.Whitelist)
}

func TestEngine_ProgressHookFires(t *testing.T) {
	e := NewEngine("", 20, slog.Default())

	var reports []int
	e.SetProgress(func(p int) { reports = append(reports, p) })

	// Binary missing: Recognize errors before any progress is reported.
	_, _ = e.Recognize(context.Background(), "/tmp/x.png")
	assert.Empty(t, reports)
}
