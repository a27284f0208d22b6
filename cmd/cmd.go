// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// libraryArg is the positional alternative to the --library flag, accepted by
// every command that operates on a library. The parsed value lands in
// r.libraryPathArg because cli/v3 v3.0.0-beta1 has no Command.StringArg
// accessor.
func libraryArg(r *Runner) []cli.Argument {
	return []cli.Argument{
		&cli.StringArg{
			Name:        "library-path",
			Max:         1,
			Destination: &r.libraryPathArg,
		},
	}
}

// selectorFlags are the mutually exclusive identifier selectors shared by
// recommend and browse.
func selectorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "item-id",
			Aliases: []string{"i"},
			Usage:   "ID of the item to get recommendations for",
		},
		&cli.StringFlag{
			Name:    "file-path",
			Aliases: []string{"p"},
			Usage:   "File path of the item to get recommendations for",
		},
		&cli.IntFlag{
			Name:    "num",
			Aliases: []string{"n"},
			Usage:   "Maximum number of recommendations to retrieve",
			Value:   0,
		},
	}
}

// scanCommand walks the library and records file metadata.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "Scan the media library",
		Arguments: libraryArg(r),
		Action:    r.Scan,
	}
}

// analyzeCommand fingerprints scanned files and rebuilds the recommendation index.
func analyzeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "Analyze the media files in the library",
		Arguments: libraryArg(r),
		Action:    r.Analyze,
	}
}

// recommendCommand runs the recommendation export pipeline.
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "recommend",
		Aliases:   []string{"rec"},
		Usage:     "Recommend similar media",
		Arguments: libraryArg(r),
		Flags: append(selectorFlags(),
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json or m3u8); omit for a table",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path (required if format is specified)",
			},
		),
		Action: r.Recommend,
	}
}

// browseCommand shows recommendations in an interactive list.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "browse",
		Usage:     "Browse recommendations interactively",
		Arguments: libraryArg(r),
		Flags:     selectorFlags(),
		Action:    r.Browse,
	}
}

// setupCommand handles configuration and database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "setup",
		Usage:     "Create a default config file and initialize the library databases",
		Arguments: libraryArg(r),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
