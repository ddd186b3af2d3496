package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/featguess/internal/formatter"
	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/repositories"
	"github.com/desertthunder/featguess/internal/shared"
	"github.com/desertthunder/featguess/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CacheList prints or exports cached tracks.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	repo, err := r.trackRepository(ctx)
	if err != nil {
		return err
	}

	tracks, err := repo.List(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list tracks: %w", err)
	}

	total, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count tracks: %w", err)
	}
	r.logger.Debug("listing cached tracks", "shown", len(tracks), "total", total)

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteExport(tracks, format, path); err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d of %d tracks to %s\n", len(tracks), total, path)
	}

	data, err := formatter.Export(tracks, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// CacheLookup checks the cache for a guess without touching the catalog.
func (r *Runner) CacheLookup(ctx context.Context, cmd *cli.Command) error {
	input := cmd.StringArg("guess")
	guess1, guess2, err := tasks.SplitGuess(input)
	if err != nil {
		return err
	}

	repo, err := r.trackRepository(ctx)
	if err != nil {
		return err
	}

	track, ok, err := repositories.NewTrackCacheAdapter(repo).Lookup(ctx, guess1, guess2)
	if err != nil {
		return fmt.Errorf("cache lookup failed: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: no cached track accepts %q and %q", shared.ErrTrackNotFound, guess1, guess2)
	}

	if cmd.Bool("json") {
		return r.writeJSON(track.View(), true)
	}
	return formatter.WriteTrack(r.output, track, true)
}

// CacheArtists lists every cached artist with the names a guess may use for it.
func (r *Runner) CacheArtists(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database(ctx)
	if err != nil {
		return err
	}

	artists, err := repositories.NewArtistRepository(db).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	if cmd.Bool("json") {
		views := make([]models.ArtistView, 0, len(artists))
		for _, a := range artists {
			views = append(views, a.View())
		}
		return r.writeJSON(views, true)
	}

	if len(artists) == 0 {
		return r.writePlain("no cached artists\n")
	}
	for _, a := range artists {
		if err := r.writePlain("%s (%s): %s\n", a.Name(), a.ID(), strings.Join(a.AcceptedNames(), ", ")); err != nil {
			return err
		}
	}
	return nil
}

// CacheAlias records an extra accepted name for a cached artist so later guesses using it hit the cache.
func (r *Runner) CacheAlias(ctx context.Context, cmd *cli.Command) error {
	id, name := cmd.StringArg("id"), strings.TrimSpace(cmd.StringArg("name"))
	if id == "" || name == "" {
		return fmt.Errorf("%w: artist id and name are required", shared.ErrInvalidArgument)
	}

	db, err := r.database(ctx)
	if err != nil {
		return err
	}
	repo := repositories.NewArtistRepository(db)

	artist, err := repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !artist.Accept(name) {
		return r.writePlain("%s already accepts %q\n", artist.Name(), name)
	}

	if err := repo.Save(ctx, artist); err != nil {
		return fmt.Errorf("failed to save artist: %w", err)
	}
	r.logger.Info("alias added", "artist", artist.ID(), "name", name)
	return r.writePlain("✓ %s now accepts %q\n", artist.Name(), name)
}
