package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/sableglen/resonate/internal/library"
	"github.com/sableglen/resonate/internal/models"
	"github.com/sableglen/resonate/internal/recommend"
	"github.com/sableglen/resonate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Recommender retrieves ranked similar items for a library file. Entries are
// ordered ascending by distance and are never re-sorted downstream.
type Recommender interface {
	NearestNeighbors(ctx context.Context, fileID int64, count int) ([]models.Recommendation, error)
}

// FileStore is the slice of the library store the pipeline consumes:
// identifier resolution and the batched metadata join.
type FileStore interface {
	IDByPath(path string) (int64, error)
	FilesByIDs(ids []int64) (map[int64]models.MediaFile, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	files  FileStore
	recs   Recommender

	// libraryPathArg receives the optional positional library path; see
	// libraryArg in cmd.go.
	libraryPathArg string
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Files and Recs override the stores opened from the library root; tests use
// them to inject doubles.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Files  FileStore
	Recs   Recommender
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		files:  opts.Files,
		recs:   opts.Recs,
	}
}

// SetLogger replaces the runner's logger.
func (r *Runner) SetLogger(l *log.Logger) { r.logger = l }

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, scanCommand, analyzeCommand, recommendCommand, browseCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// libraryRoot resolves the library selector (the --library flag or the
// positional argument, exactly one) to a canonical absolute directory.
func (r *Runner) libraryRoot(cmd *cli.Command) (string, error) {
	flagPath := cmd.String("library")
	argPath := r.libraryPathArg

	switch {
	case flagPath != "" && argPath != "":
		return "", fmt.Errorf("%w: library root supplied both as flag and argument", shared.ErrUsage)
	case flagPath == "" && argPath == "":
		return "", shared.ErrMissingLibrary
	}

	path := flagPath
	if path == "" {
		path = argPath
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize path: %w", err)
	}
	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize path: %w", err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return "", fmt.Errorf("failed to stat library root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: library root %s is not a directory", shared.ErrInvalidArgument, canonical)
	}

	return canonical, nil
}

// stores returns the metadata store and recommender for root, preferring
// injected doubles. The returned func releases whatever was opened.
func (r *Runner) stores(root string) (FileStore, Recommender, func(), error) {
	if r.files != nil && r.recs != nil {
		return r.files, r.recs, func() {}, nil
	}

	lib, err := library.Open(root, r.config)
	if err != nil {
		return nil, nil, nil, err
	}

	idx, err := recommend.Open(root, r.config)
	if err != nil {
		lib.Close()
		return nil, nil, nil, err
	}

	return lib, idx, func() {
		lib.Close()
		idx.Close()
	}, nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	return r.writePlain(format+"\n", args...)
}
