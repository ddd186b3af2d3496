package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/featguess/internal/shared"
	"github.com/desertthunder/featguess/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive guessing game.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/featguess-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	level, _ := shared.ParseLogLevel(r.config.Log.Level)
	shared.SetLogLevel(fileLogger, level)
	r.SetLogger(fileLogger)

	guesser, err := r.guessResolver(ctx)
	if err != nil {
		return err
	}
	suggester, err := r.autocompleteResolver()
	if err != nil {
		return err
	}
	history, err := r.trackRepository(ctx)
	if err != nil {
		return err
	}

	return ui.Run(ctx, ui.Options{
		Guesser:   guesser,
		Suggester: suggester,
		History:   history,
		Logger:    r.logger,
	})
}
