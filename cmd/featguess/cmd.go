// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// newApp builds the root command with the global --config flag and every subcommand.
func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "featguess",
		Usage:   "Guess two artists, find the track they share",
		Version: "0.1.0",
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("FEATGUESS_CONFIG"),
			},
		},
		Before:   r.Before,
		Commands: r.register(),
	}
}

// setupCommand handles setup operations for the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Create the config file if missing, initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recently applied migration",
				Action: r.SetupRollback,
			},
		},
	}
}

// guessCommand resolves one guess, or a file of guesses with --file.
func guessCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "guess",
		Usage:     "Find a track featuring both artists, e.g. featguess guess \"kanye west, jay z\"",
		ArgsUsage: "\"<first artist>, <second artist>\"",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "guess"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "market",
				Usage: "Restrict the search to an ISO 3166-1 market (overrides catalog.market)",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Resolve every line of a file (blank lines and # comments are skipped)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent resolutions for --file",
				Value: 4,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Resolutions started per second for --file",
				Value: 5,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Guess,
	}
}

// autocompleteCommand suggests artists for a partial name.
func autocompleteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "autocomplete",
		Aliases: []string{"ac"},
		Usage:   "Suggest artists whose name starts with the query",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Autocomplete,
	}
}

// cacheCommand inspects the resolution cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect resolved tracks stored locally",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached tracks, oldest first",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tracks to list (0 for all)",
						Value: 50,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, csv, markdown or json",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to a file instead of stdout",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:  "lookup",
				Usage: "Look a guess up in the cache without calling the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "guess"},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheLookup,
			},
			{
				Name:  "artists",
				Usage: "List cached artists with their accepted names",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheArtists,
			},
			{
				Name:      "alias",
				Usage:     "Add an accepted name to a cached artist",
				ArgsUsage: "<artist id> <name>",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
					&cli.StringArg{Name: "name"},
				},
				Action: r.CacheAlias,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the guess and autocomplete HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive guessing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive guessing game",
		Action:  r.TUI,
	}
}
