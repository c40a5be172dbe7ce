package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/MeKo-Tech/bardec/internal/barcode"
	"github.com/MeKo-Tech/bardec/internal/batch"
	"github.com/MeKo-Tech/bardec/internal/config"
)

func addDecodeFlags(cmd *cobra.Command) {
	defaults := config.DefaultConfig()
	flags := cmd.Flags()

	// Decoder flags
	flags.String("crop", "", "decode only the region <left>,<top>,<width>,<height>")
	flags.StringSlice("formats", nil, "restrict symbologies (e.g. qr,datamatrix,ean13; default: all)")
	flags.Bool("try-harder", defaults.Decode.TryHarder, "spend more time searching for codes")
	flags.Bool("auto-rotate", defaults.Decode.AutoRotate, "retry on images rotated by 90, 180 and 270 degrees")
	flags.Bool("also-inverted", defaults.Decode.AlsoInverted, "retry on the color-inverted image")
	flags.String("charset", "", "character set hint for byte-mode payloads (e.g. UTF-8, Shift_JIS)")
	flags.String("pdf-pages", "", "page range for PDF inputs (e.g. 1-3,5)")

	// Worker and discovery flags
	flags.IntP("threads", "t", defaults.Batch.Threads, "number of decode workers (values below 1 mean 1)")
	flags.BoolP("recursive", "r", false, "recursively scan directories")
	flags.StringSlice("include", nil, "file patterns to include when scanning directories")
	flags.StringSlice("exclude", nil, "file patterns to exclude when scanning directories")
	flags.Int("http-timeout", defaults.HTTP.TimeoutSec, "timeout in seconds for URL inputs")

	// Output flags
	flags.Bool("dump-results", false, "also write decoded texts to <input>.txt next to each input")
	flags.Bool("normalize-text", false, "NFC-normalize decoded text")
	flags.String("metrics-file", "", "write Prometheus metrics in textfile format after the run")
	flags.Bool("progress", false, "show a progress bar on stderr")
	flags.Bool("summary", false, "print a run summary on stderr")
}

// applyDecodeFlags overrides configuration values with flags that were set
// explicitly on the command line.
func applyDecodeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("crop") {
		cfg.Decode.Crop, _ = flags.GetString("crop")
	}
	if flags.Changed("formats") {
		cfg.Decode.Formats, _ = flags.GetStringSlice("formats")
	}
	if flags.Changed("try-harder") {
		cfg.Decode.TryHarder, _ = flags.GetBool("try-harder")
	}
	if flags.Changed("auto-rotate") {
		cfg.Decode.AutoRotate, _ = flags.GetBool("auto-rotate")
	}
	if flags.Changed("also-inverted") {
		cfg.Decode.AlsoInverted, _ = flags.GetBool("also-inverted")
	}
	if flags.Changed("charset") {
		cfg.Decode.Charset, _ = flags.GetString("charset")
	}
	if flags.Changed("pdf-pages") {
		cfg.Decode.PDFPages, _ = flags.GetString("pdf-pages")
	}

	if flags.Changed("threads") {
		cfg.Batch.Threads, _ = flags.GetInt("threads")
	}
	if flags.Changed("recursive") {
		cfg.Batch.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("include") {
		cfg.Batch.Include, _ = flags.GetStringSlice("include")
	}
	if flags.Changed("exclude") {
		cfg.Batch.Exclude, _ = flags.GetStringSlice("exclude")
	}
	if flags.Changed("http-timeout") {
		cfg.HTTP.TimeoutSec, _ = flags.GetInt("http-timeout")
	}

	if flags.Changed("dump-results") {
		cfg.Output.DumpResults, _ = flags.GetBool("dump-results")
	}
	if flags.Changed("normalize-text") {
		cfg.Output.NormalizeText, _ = flags.GetBool("normalize-text")
	}
	if flags.Changed("metrics-file") {
		cfg.Output.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if flags.Changed("progress") {
		cfg.Output.Progress, _ = flags.GetBool("progress")
	}
	if flags.Changed("summary") {
		cfg.Output.Summary, _ = flags.GetBool("summary")
	}
}

func (a *app) runDecode(cmd *cobra.Command, args []string) error {
	cfg := a.cfg
	applyDecodeFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}
	opts, err := cfg.DecodeOptions()
	if err != nil {
		return err
	}

	items, err := batch.ExpandInputs(args, cfg.Batch.Recursive, cfg.Batch.Include, cfg.Batch.Exclude)
	if err != nil {
		return fmt.Errorf("failed to expand inputs: %w", err)
	}

	backend, err := barcode.NewBackend()
	if err != nil {
		return fmt.Errorf("failed to create decoder backend: %w", err)
	}

	// Options are valid from here on; later errors are not usage errors.
	cmd.SilenceUsage = true

	var metrics *batch.Metrics
	if cfg.Output.MetricsFile != "" {
		metrics = batch.NewMetrics()
	}

	var progress batch.ProgressCallback
	if cfg.Output.Progress {
		progress = batch.NewConsoleProgressCallback(cmd.ErrOrStderr(), "decode ")
	}

	logger := slog.Default()
	logger.Debug("decode options",
		"crop", barcode.FormatCrop(opts.Crop),
		"formats", len(opts.Formats),
		"try_harder", opts.TryHarder,
		"auto_rotate", opts.AutoRotate,
		"also_inverted", opts.AlsoInverted,
		"charset", opts.CharacterSet)

	stats, err := batch.Run(cmd.Context(), batch.Config{
		Options:       opts,
		Threads:       cfg.EffectiveThreads(),
		Backend:       backend,
		Out:           cmd.OutOrStdout(),
		DumpResults:   cfg.Output.DumpResults,
		NormalizeText: cfg.Output.NormalizeText,
		PDFPages:      cfg.Decode.PDFPages,
		HTTPClient:    &http.Client{Timeout: cfg.HTTPTimeout()},
		Metrics:       metrics,
		Progress:      progress,
		Logger:        logger,
	}, items)
	if err != nil {
		return fmt.Errorf("batch decoding failed: %w", err)
	}

	if metrics != nil {
		if err := metrics.WriteTextfile(cfg.Output.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}

	if cfg.Output.Summary {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(),
			"decoded %d/%d inputs with %d workers: %d codes, %d failed, %d empty (%v)\n",
			stats.TotalSuccessful, stats.Processed, stats.Workers,
			stats.Codes, stats.Failed, stats.Empty, stats.Duration.Round(time.Millisecond))
	}

	return nil
}
