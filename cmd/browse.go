package main

import (
	"context"
	"fmt"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sableglen/resonate/internal/shared"
	"github.com/sableglen/resonate/internal/ui"
	"github.com/urfave/cli/v3"
)

// Browse resolves and retrieves recommendations like Recommend, then shows
// the joined entries in an interactive list instead of a static table.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
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

	// Redirect logs to a file so they don't interfere with the view.
	fileLogger, err := shared.NewFileLogger(filepath.Join(root, r.config.Library.DataDir, "browse.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	model := ui.NewModel(fmt.Sprintf("Recommendations for item %05d", fileID), entries)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running browser: %w", err)
	}

	return nil
}
