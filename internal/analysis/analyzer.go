package analysis

import (
	"context"
	"fmt"
	"sync"

	"github.com/sableglen/resonate/internal/library"
	"github.com/sableglen/resonate/internal/models"
	"golang.org/x/time/rate"
)

// Opts contains configuration for a feature-extraction run.
type Opts struct {
	NumWorkers  int     // Concurrent workers (default: 5, capped at 10)
	RateLimit   float64 // Files dispatched per second (default: 20)
	SampleBytes int64   // Bytes sampled per file (default: 1 MiB)
}

// Progress reports a single analyzed file to an optional listener.
type Progress struct {
	Step    int
	Total   int
	File    string
	Skipped bool
	Err     error
}

// Result summarizes a completed analysis run.
type Result struct {
	Analyzed int
	Failed   int
}

type job struct {
	step  int
	total int
	file  models.MediaFile
}

// Run computes fingerprint vectors for every library file that lacks one,
// using a rate-limited worker pool. Per-file failures are reported on prog
// and counted, not fatal; the run only aborts on store errors or context
// cancellation.
func Run(ctx context.Context, store *library.Store, opts Opts, prog chan<- Progress) (*Result, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 20.0
	}

	pending, err := store.FilesWithoutFeatures()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	if len(pending) == 0 {
		return result, nil
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan job, len(pending))
	outcomes := make(chan Progress, len(pending))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcomes <- analyzeOne(store, j, opts.SampleBytes)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i, file := range pending {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			jobs <- job{step: i + 1, total: len(pending), file: file}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for outcome := range outcomes {
		if outcome.Err != nil {
			result.Failed++
		} else {
			result.Analyzed++
		}
		sendProgress(prog, outcome)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analysis cancelled: %w", err)
	}

	return result, nil
}

func analyzeOne(store *library.Store, j job, sampleBytes int64) Progress {
	p := Progress{Step: j.step, Total: j.total, File: j.file.RelPath()}

	vector, err := Extract(j.file.AbsPath(store.Root()), sampleBytes)
	if err != nil {
		p.Err = fmt.Errorf("failed to fingerprint %s: %w", j.file.RelPath(), err)
		return p
	}

	if err := store.SaveFeatureVector(j.file.ID, vector); err != nil {
		p.Err = err
	}
	return p
}

// sendProgress delivers an update without blocking when no listener is
// attached or the listener lags.
func sendProgress(prog chan<- Progress, p Progress) {
	if prog == nil {
		return
	}
	select {
	case prog <- p:
	default:
	}
}
