// Command extract runs the document extraction cascade on a local file
// and prints the result. Useful for checking what the service would see
// for a given report without starting the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/carelink/backend/internal/config"
	"github.com/carelink/backend/internal/extraction"
	"github.com/carelink/backend/internal/imageprep"
	"github.com/carelink/backend/internal/ocr"
)

func main() {
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: extract [-v] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	caps := extraction.Probe(logger)
	var engine *ocr.Engine
	if caps.CanOCR() {
		engine = ocr.NewEngine(caps.Tesseract, cfg.MinOCRChars, logger)
	}

	svc := extraction.NewService(
		caps,
		engine,
		imageprep.New(imageprep.DefaultOptions, logger),
		extraction.Config{
			MinPDFTextChars: cfg.MinPDFTextChars,
			MinOCRChars:     cfg.MinOCRChars,
			RasterDPI:       cfg.RasterDPI,
			OCRCorrections:  cfg.OCRCorrections,
		},
		logger,
	)

	filename := filepath.Base(path)
	mimeType := mime.TypeByExtension(filepath.Ext(filename))

	result, err := svc.Extract(context.Background(), path, filename, mimeType)
	if err != nil {
		fmt.Fprintln(os.Stderr, "extract:", err)
		os.Exit(1)
	}

	fmt.Printf("method: %s\npages: %d\nplaceholder: %v\nchars: %d\n",
		result.Method, result.Pages, result.Placeholder, len(result.Text))

	if labs := extraction.ScanLabValues(result.Text); len(labs) > 0 {
		fmt.Println("lab values:")
		for _, lab := range labs {
			fmt.Println("  -", lab)
		}
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Println(result.Text)
}
