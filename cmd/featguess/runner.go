package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/repositories"
	"github.com/desertthunder/featguess/internal/services"
	"github.com/desertthunder/featguess/internal/shared"
	"github.com/desertthunder/featguess/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The catalog client and database are opened on first use so commands that need neither (setup, help) work
// without credentials.
type Runner struct {
	config  *shared.Config
	catalog services.Catalog
	db      *sql.DB
	logger  *log.Logger
	output  io.Writer
	lookup  func(string) (string, bool)
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	DB      *sql.DB
	Logger  *log.Logger
	Output  io.Writer
	Lookup  func(string) (string, bool) // environment lookup; defaults to os.LookupEnv
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
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}

	return &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		db:      opts.DB,
		logger:  opts.Logger,
		output:  opts.Output,
		lookup:  opts.Lookup,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, guessCommand, autocompleteCommand, cacheCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config (defaults when absent), overlays the environment and
// validates the result.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")

	config := shared.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if config, err = shared.LoadConfig(path); err != nil {
			return ctx, err
		}
	} else {
		r.logger.Debug("config file not found, using defaults", "path", path)
	}

	config.ApplyEnv(r.lookup)
	if err := config.Validate(); err != nil {
		return ctx, err
	}

	level, _ := shared.ParseLogLevel(config.Log.Level)
	shared.SetLogLevel(r.logger, level)

	r.config = config
	return ctx, nil
}

// SetLogger replaces the logger, e.g. to keep logs off the terminal while the TUI runs.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database connection if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// catalogClient returns the catalog, building the Spotify client from the configured credentials on first use.
func (r *Runner) catalogClient() (services.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	tokens, err := services.NewTokenProvider(r.config.Credentials.Spotify, r.config.Catalog.TokenURL, r.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET or [credentials.spotify] in the config file", err)
	}

	r.catalog = services.NewSpotifyCatalog(tokens, services.CatalogOptionsFromConfig(r.config.Catalog, r.logger))
	return r.catalog, nil
}

// database returns the cache database, opening it and applying migrations on first use.
func (r *Runner) database(ctx context.Context) (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	applied, err := shared.RunMigrations(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(applied) > 0 {
		r.logger.Info("applied migrations", "versions", applied)
	}

	r.db = db
	return db, nil
}

func (r *Runner) trackRepository(ctx context.Context) (*repositories.TrackRepository, error) {
	db, err := r.database(ctx)
	if err != nil {
		return nil, err
	}
	return repositories.NewTrackRepository(db), nil
}

// guessResolver wires the catalog and the SQLite cache into a resolver.
func (r *Runner) guessResolver(ctx context.Context) (*tasks.GuessResolver, error) {
	catalog, err := r.catalogClient()
	if err != nil {
		return nil, err
	}
	repo, err := r.trackRepository(ctx)
	if err != nil {
		return nil, err
	}

	return tasks.NewGuessResolver(catalog, repositories.NewTrackCacheAdapter(repo), tasks.ResolverOptions{
		SearchLimit: r.config.Catalog.SearchLimit,
		Market:      r.config.Catalog.Market,
		Logger:      r.logger,
	}), nil
}

func (r *Runner) autocompleteResolver() (*tasks.AutocompleteResolver, error) {
	catalog, err := r.catalogClient()
	if err != nil {
		return nil, err
	}

	return tasks.NewAutocompleteResolver(catalog, tasks.AutocompleteOptions{
		Limit:  r.config.Catalog.AutocompleteLimit,
		Market: r.config.Catalog.AutocompleteMarket,
		Logger: r.logger,
	}), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
