package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/bardec/internal/testutil"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var (
		outDir  = flag.String("out", "testdata/barcodes", "output directory, relative to the project root")
		verbose = flag.Bool("v", false, "Verbose output")
		help    = flag.Bool("h", false, "Show help")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Generate barcode test images and a manifest for bardec testing.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *help {
		flag.Usage()
		return
	}

	dir := *outDir
	if !filepath.IsAbs(dir) {
		root, err := testutil.GetProjectRoot()
		if err != nil {
			slog.Error("Failed to find project root", "error", err)
			os.Exit(1)
		}
		dir = filepath.Join(root, dir)
	}

	fixtures := testutil.DefaultBarcodeFixtures()
	if *verbose {
		for _, f := range fixtures {
			slog.Info("Fixture", "name", f.Name, "type", f.Type, "transform", f.Transform)
		}
	}

	if err := testutil.WriteBarcodeFixtures(dir, fixtures); err != nil {
		slog.Error("Failed to generate test data", "error", err)
		os.Exit(1)
	}

	slog.Info("Test data generation completed", "dir", dir, "fixtures", len(fixtures))
}
