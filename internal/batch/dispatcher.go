package batch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/bardec/internal/barcode"
)

// Config describes one batch run. Options are shared read-only by all
// workers.
type Config struct {
	Options barcode.Options
	Threads int

	Backend  barcode.Backend
	Resolver Resolver // nil selects NewResolver(HTTPClient, PDFPages)

	Out           io.Writer // JSON lines; nil means os.Stdout
	DumpResults   bool
	NormalizeText bool

	PDFPages   string
	HTTPClient *http.Client

	Metrics  *Metrics
	Progress ProgressCallback
	Logger   *slog.Logger
}

// Stats aggregates the outcome of a run.
type Stats struct {
	// TotalSuccessful counts items that produced at least one code.
	TotalSuccessful int
	Processed       int
	Failed          int
	Empty           int
	Codes           int
	Workers         int
	WorkerSuccess   []int
	Duration        time.Duration
}

// ClampThreads returns the effective worker count: n, or 1 when n < 1.
func ClampThreads(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// Run decodes every item with a fixed pool of workers sharing one queue and
// returns once the queue is drained and all workers have exited.
func Run(ctx context.Context, cfg Config, items []string) (*Stats, error) {
	if cfg.Backend == nil {
		return nil, errors.New("batch: no decoder backend configured")
	}
	if cfg.Resolver == nil {
		cfg.Resolver = NewResolver(cfg.HTTPClient, cfg.PDFPages)
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Progress == nil {
		cfg.Progress = NoOpProgressCallback{}
	}

	threads := ClampThreads(cfg.Threads)
	queue := NewQueue(items)
	reporter := NewReporter(cfg.Out, cfg.DumpResults, cfg.Logger)

	cfg.Logger.Info("starting batch", "items", len(items), "threads", threads)
	start := time.Now()
	cfg.Progress.OnStart(len(items))

	var (
		wg   sync.WaitGroup
		done atomic.Int64
	)
	workers := make([]*worker, threads)
	for i := range workers {
		w := &worker{
			id:            i,
			queue:         queue,
			resolver:      cfg.Resolver,
			backend:       cfg.Backend,
			reporter:      reporter,
			opts:          cfg.Options,
			normalizeText: cfg.NormalizeText,
			metrics:       cfg.Metrics,
			progress:      cfg.Progress,
			done:          &done,
			total:         len(items),
			logger:        cfg.Logger.With("worker", i),
		}
		workers[i] = w

		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}
	wg.Wait()
	cfg.Progress.OnComplete()

	stats := &Stats{
		Workers:       threads,
		WorkerSuccess: make([]int, threads),
		Duration:      time.Since(start),
	}
	for i, w := range workers {
		stats.TotalSuccessful += w.stats.successful
		stats.Processed += w.stats.processed
		stats.Failed += w.stats.failed
		stats.Empty += w.stats.empty
		stats.Codes += w.stats.codes
		stats.WorkerSuccess[i] = w.stats.successful
	}

	cfg.Logger.Info("batch finished",
		"successful", stats.TotalSuccessful,
		"processed", stats.Processed,
		"failed", stats.Failed,
		"empty", stats.Empty,
		"codes", stats.Codes,
		"duration", stats.Duration)
	return stats, nil
}
