package batch

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/bardec/internal/barcode"
)

// workerStats is owned by one worker goroutine while it runs and read by the
// dispatcher only after the worker has been joined.
type workerStats struct {
	successful int
	processed  int
	failed     int
	empty      int
	codes      int
}

type worker struct {
	id       int
	queue    *Queue
	resolver Resolver
	backend  barcode.Backend
	reporter *Reporter
	opts     barcode.Options

	normalizeText bool

	metrics  *Metrics
	progress ProgressCallback
	done     *atomic.Int64
	total    int
	logger   *slog.Logger

	stats workerStats
}

// run drains the queue until it reports empty.
func (w *worker) run(ctx context.Context) {
	for {
		item, ok := w.queue.Next()
		if !ok {
			return
		}
		err := w.process(ctx, item)

		// current is this item's completion index, unique across workers.
		current := int(w.done.Add(1))
		if err != nil {
			w.progress.OnError(current, err)
		}
		w.progress.OnProgress(current, w.total)
	}
}

// process handles one work item. Every failure stays local to the item; the
// returned error only feeds progress reporting.
func (w *worker) process(ctx context.Context, item string) error {
	w.stats.processed++
	logger := w.logger.With("input", item)

	images, err := w.resolver.Resolve(ctx, item)
	if err != nil {
		return w.fail(logger, item, err)
	}

	var (
		found   []barcode.Result
		lastErr error
	)
	for idx, img := range images {
		results, err := w.decodeImage(ctx, img)
		if err != nil {
			logger.Debug("image decode failed", "image", idx, "error", err)
			lastErr = err
			continue
		}
		found = append(found, results...)
	}

	switch {
	case len(found) > 0:
		w.stats.successful++
		w.stats.codes += len(found)
		w.metrics.ObserveItem(StatusDecoded)
		for _, res := range found {
			w.metrics.ObserveCode(res.Format.String())
		}
		logger.Debug("decoded item", "codes", len(found))
		if err := w.reporter.Report(item, found); err != nil {
			logger.Warn("failed to report results", "error", err)
		}
	case lastErr != nil:
		return w.fail(logger, item, lastErr)
	default:
		w.stats.empty++
		w.metrics.ObserveItem(StatusEmpty)
		logger.Debug("no codes found")
	}
	return nil
}

func (w *worker) decodeImage(ctx context.Context, img image.Image) ([]barcode.Result, error) {
	cropped, err := barcode.ApplyCrop(img, w.opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := w.backend.Decode(ctx, cropped, w.opts)
	w.metrics.ObserveDecode(time.Since(start))
	if err != nil {
		return nil, err
	}

	if w.normalizeText {
		for i := range results {
			results[i].Text = barcode.NormalizeText(results[i].Text)
		}
	}
	return results, nil
}

func (w *worker) fail(logger *slog.Logger, item string, err error) error {
	w.stats.failed++
	w.metrics.ObserveItem(StatusFailed)
	logger.Warn("failed to process input", "error", err)
	return &itemError{input: item, err: err}
}

type itemError struct {
	input string
	err   error
}

func (e *itemError) Error() string { return e.input + ": " + e.err.Error() }
func (e *itemError) Unwrap() error { return e.err }
