package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sableglen/resonate/internal/models"
	"github.com/sableglen/resonate/internal/render"
	"github.com/sableglen/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Recommend runs the recommendation export pipeline: resolve the target item,
// retrieve its neighbors, join them against file metadata, and render a
// table, JSON document, or M3U8 playlist. Any stage failure aborts the
// pipeline.
func (r *Runner) Recommend(ctx context.Context, cmd *cli.Command) error {
	// Selector mistakes are reported before any collaborator is touched.
	if err := validateSelectors(cmd); err != nil {
		return err
	}

	root, err := r.libraryRoot(cmd)
	if err != nil {
		return err
	}

	files, recs, closeStores, err := r.stores(root)
	if err != nil {
		return err
	}
	defer closeStores()

	fileID, err := resolveItem(cmd, files)
	if err != nil {
		return err
	}

	recommendations, err := recs.NearestNeighbors(ctx, fileID, r.recommendCount(cmd))
	if err != nil {
		return fmt.Errorf("failed to get recommendations: %w", err)
	}

	entries, err := r.joinFiles(files, recommendations)
	if err != nil {
		return err
	}

	return r.renderRecommendations(cmd, root, recommendations, entries)
}

// validateSelectors enforces the item-id xor file-path constraint.
func validateSelectors(cmd *cli.Command) error {
	hasID := cmd.IsSet("item-id")
	hasPath := cmd.IsSet("file-path")

	switch {
	case hasID && hasPath:
		return fmt.Errorf("%w: --item-id and --file-path are mutually exclusive", shared.ErrUsage)
	case !hasID && !hasPath:
		return fmt.Errorf("%w: either --item-id or --file-path must be provided", shared.ErrUsage)
	}

	if cmd.IsSet("num") && cmd.Int("num") < 0 {
		return fmt.Errorf("%w: --num must not be negative", shared.ErrUsage)
	}
	return nil
}

// resolveItem turns the validated selector into a library file id. A direct
// id passes through unvalidated; existence is checked at retrieval.
func resolveItem(cmd *cli.Command, files FileStore) (int64, error) {
	if cmd.IsSet("item-id") {
		return int64(cmd.Int("item-id")), nil
	}
	return files.IDByPath(cmd.String("file-path"))
}

func (r *Runner) recommendCount(cmd *cli.Command) int {
	if cmd.IsSet("num") {
		return int(cmd.Int("num"))
	}
	return r.config.Recommend.DefaultNum
}

// joinFiles performs the single batched metadata lookup and pairs records
// with the retrieval entries, preserving their order.
func (r *Runner) joinFiles(files FileStore, recommendations []models.Recommendation) ([]render.Entry, error) {
	ids := make([]int64, len(recommendations))
	for i, rec := range recommendations {
		ids[i] = rec.FileID
	}

	records, err := files.FilesByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get files by IDs: %w", err)
	}

	entries := render.Join(recommendations, records)
	if dropped := render.Dropped(entries); dropped > 0 {
		r.logger.Debug("recommendations without file records are omitted from table and playlist output", "count", dropped)
	}
	return entries, nil
}

func (r *Runner) renderRecommendations(cmd *cli.Command, root string, recommendations []models.Recommendation, entries []render.Entry) error {
	format := cmd.String("format")
	output := cmd.String("output")

	if format != "" && output == "" {
		return fmt.Errorf("%w: output file path is required when a format is specified", shared.ErrUsage)
	}

	switch format {
	case "":
		return render.Table(r.output, entries, root)

	case render.FormatJSON:
		result, err := render.WriteJSON(recommendations, output)
		if err != nil {
			return err
		}
		r.warnCorrected(result)
		return r.writePlainln("Recommendations saved to JSON file: %s", result.Path)

	case render.FormatM3U8:
		result, err := render.WriteM3U8(entries, root, output)
		if err != nil {
			return err
		}
		r.warnCorrected(result)
		return r.writePlainln("Recommendations saved to M3U8 file: %s", result.Path)

	default:
		return fmt.Errorf("%w: %q (supported formats are 'json' and 'm3u8')", shared.ErrUnsupportedFormat, format)
	}
}

func (r *Runner) warnCorrected(result *render.WriteResult) {
	if result.Corrected {
		r.logger.Warnf("output file extension corrected to %s", filepath.Ext(result.Path))
	}
}
