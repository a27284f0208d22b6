package main

import (
	"context"
	"fmt"

	"github.com/sableglen/resonate/internal/analysis"
	"github.com/sableglen/resonate/internal/library"
	"github.com/sableglen/resonate/internal/recommend"
	"github.com/urfave/cli/v3"
)

// Analyze fingerprints every scanned file lacking a feature vector, then
// rebuilds the recommendation index from the stored vectors.
func (r *Runner) Analyze(ctx context.Context, cmd *cli.Command) error {
	root, err := r.libraryRoot(cmd)
	if err != nil {
		return err
	}

	store, err := library.Open(root, r.config)
	if err != nil {
		return err
	}
	defer store.Close()

	index, err := recommend.Open(root, r.config)
	if err != nil {
		return err
	}
	defer index.Close()

	prog := make(chan analysis.Progress, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			if update.Err != nil {
				r.logger.Warn("analysis skipped file", "file", update.File, "err", update.Err)
				continue
			}
			if err := r.writePlain("  [%d/%d] %s\n", update.Step, update.Total, update.File); err != nil {
				r.logger.Warn("failed to write progress", "err", err)
			}
		}
	}()

	result, err := analysis.Run(ctx, store, analysis.Opts{
		NumWorkers:  r.config.Analysis.NumWorkers,
		RateLimit:   r.config.Analysis.RateLimit,
		SampleBytes: r.config.Analysis.SampleBytes,
	}, prog)
	close(prog)
	<-done

	if err != nil {
		return fmt.Errorf("audio analysis failed: %w", err)
	}

	vectors, err := store.FeatureVectors()
	if err != nil {
		return err
	}
	if err := index.Sync(vectors); err != nil {
		return fmt.Errorf("sync recommendation failed: %w", err)
	}

	r.logger.Info("analysis finished", "analyzed", result.Analyzed, "failed", result.Failed, "indexed", len(vectors))

	return r.writePlainln("Audio analysis completed successfully: %d analyzed, %d failed, %d indexed.",
		result.Analyzed, result.Failed, len(vectors))
}
