package main

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/sableglen/resonate/internal/library"
	"github.com/sableglen/resonate/internal/recommend"
	"github.com/sableglen/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a default config file and, when a library is selected,
// initializes and migrates its databases.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("skipping config creation: %v", err)
	} else {
		r.writePlainln("Created %s", configPath)
	}

	root, err := r.libraryRoot(cmd)
	if errors.Is(err, shared.ErrMissingLibrary) {
		return nil
	}
	if err != nil {
		return err
	}

	store, err := library.Open(root, r.config)
	if err != nil {
		return err
	}
	store.Close()

	index, err := recommend.Open(root, r.config)
	if err != nil {
		return err
	}
	index.Close()

	return r.writePlainln("Initialized library databases under %s", filepath.Join(root, r.config.Library.DataDir))
}
