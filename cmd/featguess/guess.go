package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/desertthunder/featguess/internal/formatter"
	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/shared"
	"github.com/desertthunder/featguess/internal/tasks"
	"github.com/urfave/cli/v3"
)

// guessOutput is the --json shape of a resolved guess.
type guessOutput struct {
	Input  string            `json:"input"`
	Status string            `json:"status"`
	Cached bool              `json:"cached"`
	Track  *models.TrackView `json:"track,omitempty"`
	Error  string            `json:"error,omitempty"`
}

func newGuessOutput(input string, res tasks.GuessResult) guessOutput {
	out := guessOutput{Input: input, Status: res.Status.String(), Cached: res.Cached}
	if res.Track != nil {
		view := res.Track.View()
		out.Track = &view
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// Guess resolves a single "first, second" guess, or every line of --file.
func (r *Runner) Guess(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String("file"); path != "" {
		return r.guessFile(ctx, cmd, path)
	}

	input := cmd.StringArg("guess")
	if input == "" {
		return fmt.Errorf("%w: guess, e.g. \"kanye west, jay z\"", shared.ErrMissingArgument)
	}

	resolver, err := r.guessResolver(ctx)
	if err != nil {
		return err
	}

	res := resolver.Resolve(ctx, tasks.GuessRequest{Input: input, Market: cmd.String("market")}, nil)

	if cmd.Bool("json") {
		if err := r.writeJSON(newGuessOutput(input, res), cmd.Bool("pretty")); err != nil {
			return err
		}
		if res.Status == tasks.Failed || res.Status == tasks.Invalid {
			return res.Err
		}
		return nil
	}

	switch res.Status {
	case tasks.Found:
		if res.Err != nil {
			r.logger.Warn("track resolved but not cached", "error", res.Err)
		}
		return formatter.WriteTrack(r.output, res.Track, res.Cached)
	case tasks.NotFound:
		return r.writePlain("✗ No track features both artists in %q\n", input)
	case tasks.Invalid:
		return res.Err
	default:
		return fmt.Errorf("guess failed: %w", res.Err)
	}
}

// guessFile resolves every guess in the file at path through the batch worker pool.
func (r *Runner) guessFile(ctx context.Context, cmd *cli.Command, path string) error {
	inputs, err := readGuesses(path)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("%w: %s contains no guesses", shared.ErrInvalidArgument, path)
	}

	resolver, err := r.guessResolver(ctx)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, len(inputs))
	go func() {
		for update := range progress {
			r.logger.Info(update.Message, "step", update.Step, "total", update.Total)
		}
	}()

	result := resolver.ResolveBatch(ctx, progress, inputs, tasks.BatchOpts{
		Market:     cmd.String("market"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)

	if cmd.Bool("json") {
		outputs := make([]guessOutput, len(result.Results))
		for i, res := range result.Results {
			outputs[i] = newGuessOutput(result.Inputs[i], res)
		}
		return r.writeJSON(outputs, cmd.Bool("pretty"))
	}

	for i, res := range result.Results {
		line := fmt.Sprintf("%-10s %s", res.Status, result.Inputs[i])
		if res.Track != nil {
			line += " → " + res.Track.Name()
		} else if res.Err != nil {
			line += " (" + res.Err.Error() + ")"
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}

	return r.writePlain("\nfound %d, not found %d, failed %d, invalid %d\n",
		result.Found, result.NotFound, result.Failed, result.Invalid)
}

// readGuesses returns the non-blank, non-comment lines of the file at path.
func readGuesses(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open guesses file: %w", err)
	}
	defer f.Close()

	var inputs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		inputs = append(inputs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read guesses file: %w", err)
	}
	return inputs, nil
}

// Autocomplete prints artist suggestions for a partial name.
func (r *Runner) Autocomplete(ctx context.Context, cmd *cli.Command) error {
	resolver, err := r.autocompleteResolver()
	if err != nil {
		return err
	}

	artists, err := resolver.Suggest(ctx, cmd.StringArg("query"))
	if err != nil {
		return fmt.Errorf("autocomplete failed: %w", err)
	}

	if cmd.Bool("json") {
		views := make([]models.ArtistView, 0, len(artists))
		for _, a := range artists {
			views = append(views, a.View())
		}
		return r.writeJSON(views, false)
	}
	return formatter.WriteArtists(r.output, artists)
}
