package main

import (
	"context"

	"github.com/sableglen/resonate/internal/library"
	"github.com/sableglen/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Scan walks the library root and records a metadata row per media file,
// pruning rows whose files vanished since the last scan.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	root, err := r.libraryRoot(cmd)
	if err != nil {
		return err
	}

	store, err := library.Open(root, r.config)
	if err != nil {
		return err
	}
	defer store.Close()

	logger := shared.WithLogger(r.logger, "scan", shared.GenerateID())
	logger.Info("scanning library", "root", root)

	result, err := store.Scan(ctx, r.config.Library.Extensions)
	if err != nil {
		return err
	}

	logger.Info("scan finished",
		"files", result.Scanned,
		"added", result.Added,
		"updated", result.Updated,
		"removed", result.Removed,
	)

	return r.writePlainln("Library scanned successfully: %d files (%d added, %d removed).",
		result.Scanned, result.Added, result.Removed)
}
