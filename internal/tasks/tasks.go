// package tasks implements the guess and autocomplete resolvers.
//
// Resolvers never return errors: they return typed results that separate "not found" from "failed".
// Progress is emitted over an optional channel for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/matching"
	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/services"
	"github.com/desertthunder/featguess/internal/shared"
	"golang.org/x/sync/errgroup"
)

// GuessSeparator splits the two names of a guess. Embedded separators cannot be escaped.
const GuessSeparator = ","

// DefaultSearchLimit is the size of the track result page scanned for a match.
const DefaultSearchLimit = 25

// ResolutionCache stores resolved tracks keyed by the literal guesses that reached them.
type ResolutionCache interface {
	// Lookup finds a track where some artist accepts guess1 and some artist accepts guess2.
	Lookup(ctx context.Context, guess1, guess2 string) (*models.Track, bool, error)

	// Store persists track, recording guess1 and guess2 as aliases of its first and second artist.
	Store(ctx context.Context, track *models.Track, guess1, guess2 string) (*models.Track, error)
}

// GuessStatus is the outcome of a resolution.
type GuessStatus int

const (
	Found    GuessStatus = iota // a track featuring both artists was found
	NotFound                    // the catalog answered but nothing matched
	Failed                      // the catalog could not be reached or rejected the request
	Invalid                     // the input did not contain two names
)

func (s GuessStatus) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	case Failed:
		return "failed"
	case Invalid:
		return "invalid"
	default:
		return ""
	}
}

// GuessRequest is a raw two-name guess with an optional market override.
type GuessRequest struct {
	Input  string
	Market string
}

// GuessResult is the typed outcome of [GuessResolver.Resolve].
//
// Track is set whenever Status is Found, even if persisting it failed (Err is then non-nil).
type GuessResult struct {
	Track  *models.Track
	Status GuessStatus
	Phase  Phase
	Cached bool
	Err    error
}

// SplitGuess splits input into its first two names, trimming surrounding whitespace.
// Names after the second are ignored.
func SplitGuess(input string) (string, string, error) {
	parts := strings.Split(input, GuessSeparator)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: expected two names separated by %q", shared.ErrInvalidInput, GuessSeparator)
	}

	first, second := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if first == "" || second == "" {
		return "", "", fmt.Errorf("%w: both names must be non-empty", shared.ErrInvalidInput)
	}
	return first, second, nil
}

// ResolverOptions configures a [GuessResolver].
type ResolverOptions struct {
	SearchLimit int    // Track result page size (default: 25)
	Market      string // Default market; empty searches every market
	Logger      *log.Logger
}

// GuessResolver resolves two guessed artist names to a track featuring both.
type GuessResolver struct {
	catalog     services.Catalog
	cache       ResolutionCache
	searchLimit int
	market      string
	logger      *log.Logger
}

// NewGuessResolver creates a GuessResolver backed by catalog and cache.
func NewGuessResolver(catalog services.Catalog, cache ResolutionCache, opts ResolverOptions) *GuessResolver {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &GuessResolver{
		catalog:     catalog,
		cache:       cache,
		searchLimit: opts.SearchLimit,
		market:      opts.Market,
		logger:      opts.Logger,
	}
}

// Resolve runs the cache check, catalog search, matching and persistence for one guess.
func (r *GuessResolver) Resolve(ctx context.Context, req GuessRequest, progress chan<- ProgressUpdate) GuessResult {
	guess1, guess2, err := SplitGuess(req.Input)
	if err != nil {
		return r.finish(GuessResult{Status: Invalid, Phase: CacheCheck, Err: err})
	}

	logger := shared.WithLogger(r.logger, "run", shared.GenerateID(), "guess1", guess1, "guess2", guess2)

	sendProgress(progress, cacheCheckUpdate(guess1, guess2))
	cached, ok, err := r.cache.Lookup(ctx, guess1, guess2)
	switch {
	case err != nil:
		cacheLookupsTotal.WithLabelValues("error").Inc()
		logger.Warn("cache lookup failed, searching catalog", "error", err)
	case ok:
		cacheLookupsTotal.WithLabelValues("hit").Inc()
		logger.Info("found in cache", "track", cached.ID())
		sendProgress(progress, persistedUpdate(cached, true))
		return r.finish(GuessResult{Track: cached, Status: Found, Phase: Persisted, Cached: true})
	default:
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	market := req.Market
	if market == "" {
		market = r.market
	}

	query := guess1 + " " + guess2
	sendProgress(progress, catalogSearchUpdate(query))
	candidates, err := r.catalog.SearchTracks(ctx, query, r.searchLimit, market)
	if err != nil {
		logger.Error("catalog search failed", "query", query, "error", err)
		return r.finish(GuessResult{Status: Failed, Phase: CatalogSearch, Err: err})
	}

	sendProgress(progress, matchingUpdate(len(candidates)))
	candidate, m, ok := firstMatchingTrack(guess1, guess2, candidates)
	if !ok {
		logger.Info("no matching track", "results", len(candidates))
		sendProgress(progress, unresolvedUpdate(guess1, guess2))
		return r.finish(GuessResult{Status: NotFound, Phase: Unresolved})
	}

	track := r.buildTrack(ctx, candidate, m, logger)
	stored, err := r.cache.Store(ctx, track, guess1, guess2)
	if err != nil {
		logger.Error("failed to persist resolved track", "track", track.ID(), "error", err)
		return r.finish(GuessResult{Track: track, Status: Found, Phase: Matching, Err: err})
	}

	logger.Info("resolved", "track", stored.ID(), "name", stored.Name())
	sendProgress(progress, persistedUpdate(stored, false))
	return r.finish(GuessResult{Track: stored, Status: Found, Phase: Persisted})
}

func (r *GuessResolver) finish(res GuessResult) GuessResult {
	guessTotal.WithLabelValues(res.Status.String()).Inc()
	return res
}

// firstMatchingTrack returns the first candidate, in catalog order, whose artists satisfy both guesses.
func firstMatchingTrack(guess1, guess2 string, candidates []services.CatalogTrack) (services.CatalogTrack, matching.MatchResult, bool) {
	for _, c := range candidates {
		m := matching.Match(guess1, guess2, c.ArtistNames())
		if m.Complete() {
			return c, m, true
		}
	}
	return services.CatalogTrack{}, matching.MatchResult{}, false
}

// buildTrack fetches both artist images concurrently and assembles the track.
// A failed image lookup leaves that image empty.
func (r *GuessResolver) buildTrack(ctx context.Context, c services.CatalogTrack, m matching.MatchResult, logger *log.Logger) *models.Track {
	slots := []services.CatalogArtist{c.Artists[m.First], c.Artists[m.Second]}
	if m.First == m.Second {
		slots = slots[:1]
	}

	images := make([]string, len(slots))
	var g errgroup.Group
	for i, a := range slots {
		g.Go(func() error {
			img, err := r.catalog.ArtistImage(ctx, a)
			if err != nil {
				logger.Warn("artist image lookup failed", "artist", a.ID, "error", err)
				return nil
			}
			images[i] = img
			return nil
		})
	}
	g.Wait()

	first := models.NewArtist(slots[0].ID, slots[0].Name, images[0])
	second := first
	if len(slots) == 2 {
		second = models.NewArtist(slots[1].ID, slots[1].Name, images[1])
	}

	return models.NewTrack(
		c.ID,
		c.Name,
		services.FirstImageURL(c.Album.Images),
		c.Album.ReleaseDate,
		c.PreviewURL,
		first,
		second,
	)
}
