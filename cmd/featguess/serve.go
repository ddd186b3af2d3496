package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/featguess/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = port
	}

	guesser, err := r.guessResolver(ctx)
	if err != nil {
		return err
	}
	suggester, err := r.autocompleteResolver()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.New(server.Options{Guesser: guesser, Suggester: suggester, Logger: r.logger})
	if err := server.ListenAndServe(ctx, cfg.Addr(), router, r.logger); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
