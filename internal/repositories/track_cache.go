package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/shared"
)

// TrackCacheAdapter implements tasks.ResolutionCache using TrackRepository.
//
// Lookups are literal matches on accepted names; stores are idempotent.
type TrackCacheAdapter struct {
	repo *TrackRepository
}

// NewTrackCacheAdapter creates a new TrackCacheAdapter with the given repository
func NewTrackCacheAdapter(repo *TrackRepository) *TrackCacheAdapter {
	return &TrackCacheAdapter{repo: repo}
}

// Lookup returns the cached track both guesses resolve to, in either order.
// A miss is (nil, false, nil).
func (a *TrackCacheAdapter) Lookup(ctx context.Context, guess1, guess2 string) (*models.Track, bool, error) {
	track, err := a.repo.FindByGuesses(ctx, guess1, guess2)
	if errors.Is(err, shared.ErrTrackNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return track, true, nil
}

// Store records guess1 as an alias of the track's first artist and guess2 of its second,
// persists the track, and returns it as stored (including aliases recorded earlier).
func (a *TrackCacheAdapter) Store(ctx context.Context, track *models.Track, guess1, guess2 string) (*models.Track, error) {
	artists := track.Artists()
	for i, guess := range []string{guess1, guess2} {
		if artists[i] == nil {
			return nil, fmt.Errorf("%w: track %s is missing artist %d", shared.ErrInvalidInput, track.ID(), i)
		}
		artists[i].Accept(guess)
	}

	if _, err := a.repo.Save(ctx, track); err != nil {
		return nil, fmt.Errorf("failed to cache track: %w", err)
	}

	return a.repo.Get(ctx, track.ID())
}
