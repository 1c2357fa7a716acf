// Package ocr adapts the tesseract CLI for scanned-document recognition.
//
// Tesseract availability is probed once at startup; when the binary is
// absent every call degrades to an error the extraction cascade converts
// into placeholder text, never a crash.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Profile is one tesseract tuning configuration.
type Profile struct {
	Name string
	// PSM is the page segmentation mode: 3 analyses full layout for dense
	// printed documents, 6 assumes a single uniform text block.
	PSM string
	// OEM selects the engine mode (1 = LSTM only).
	OEM string
	// Whitelist restricts recognized characters; empty means all.
	Whitelist string
}

var (
	// DenseProfile is the primary pass, tuned for printed medical reports
	// with tables and mixed layout.
	DenseProfile = Profile{Name: "dense", PSM: "3", OEM: "1"}

	// BlockProfile is the alternate pass for simpler single-block layouts
	// where full layout analysis fragments the text.
	BlockProfile = Profile{Name: "block", PSM: "6", OEM: "1",
		Whitelist: "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789.,:;()/%+-<>= "}
)

// ProgressFunc receives coarse recognition progress in percent. It must
// not block; the engine calls it inline.
type ProgressFunc func(percent int)

// Engine runs tesseract with a primary and an alternate profile.
type Engine struct {
	binary    string
	minSignal int
	logger    *slog.Logger
	progress  ProgressFunc
}

// Probe locates the tesseract binary and verifies it runs. The result is
// recorded once at startup; call sites branch on it instead of re-probing.
func Probe() (string, bool) {
	path, err := exec.LookPath("tesseract")
	if err != nil {
		return "", false
	}
	if err := exec.Command(path, "--version").Run(); err != nil {
		return "", false
	}
	return path, true
}

// NewEngine creates an engine for a probed binary path. minSignal is the
// character count below which a pass is considered to have failed.
func NewEngine(binary string, minSignal int, logger *slog.Logger) *Engine {
	e := &Engine{
		binary:    binary,
		minSignal: minSignal,
		logger:    logger.With("component", "ocr"),
	}
	e.progress = func(percent int) {
		e.logger.Debug("ocr progress", "percent", percent)
	}
	return e
}

// SetProgress replaces the default log-based progress hook.
func (e *Engine) SetProgress(fn ProgressFunc) {
	if fn != nil {
		e.progress = fn
	}
}

// Recognize runs OCR on a preprocessed image. The dense profile runs
// first; when its output is below the minimum signal the block profile
// gets one retry before giving up.
func (e *Engine) Recognize(ctx context.Context, imagePath string) (string, error) {
	if e.binary == "" {
		return "", fmt.Errorf("tesseract is not available")
	}

	e.progress(0)
	text, primaryErr := e.runProfile(ctx, imagePath, DenseProfile)
	e.progress(50)

	if primaryErr == nil && len(strings.TrimSpace(text)) >= e.minSignal {
		e.progress(100)
		return text, nil
	}
	if primaryErr != nil {
		e.logger.Debug("primary ocr pass failed, trying alternate",
			"profile", DenseProfile.Name, "error", primaryErr)
	} else {
		e.logger.Debug("primary ocr pass below signal threshold, trying alternate",
			"profile", DenseProfile.Name, "chars", len(text))
	}

	text, altErr := e.runProfile(ctx, imagePath, BlockProfile)
	e.progress(100)
	if altErr != nil {
		if primaryErr != nil {
			return "", fmt.Errorf("ocr failed on both profiles: %w", altErr)
		}
		return "", fmt.Errorf("ocr alternate pass failed: %w", altErr)
	}
	if len(strings.TrimSpace(text)) < e.minSignal {
		return "", fmt.Errorf("ocr produced insufficient text (%d chars)", len(strings.TrimSpace(text)))
	}
	return text, nil
}

// runProfile executes one tesseract pass writing to stdout.
func (e *Engine) runProfile(ctx context.Context, imagePath string, p Profile) (string, error) {
	args := []string{imagePath, "stdout", "--psm", p.PSM, "--oem", p.OEM}
	if p.Whitelist != "" {
		args = append(args, "-c", "tessedit_char_whitelist="+p.Whitelist)
	}

	cmd := exec.CommandContext(ctx, e.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract %s profile: %w (%s)",
			p.Name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
