package tasks

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/matching"
	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/services"
	"github.com/desertthunder/featguess/internal/shared"
)

// DefaultAutocompleteLimit is the number of artists requested per keystroke.
const DefaultAutocompleteLimit = 3

// AutocompleteOptions configures an [AutocompleteResolver].
type AutocompleteOptions struct {
	Limit  int    // Artist result page size (default: 3)
	Market string // Market applied to artist searches
	Logger *log.Logger
}

// AutocompleteResolver suggests artists for a partially typed name. Results are not cached.
type AutocompleteResolver struct {
	catalog services.Catalog
	limit   int
	market  string
	logger  *log.Logger
}

// NewAutocompleteResolver creates an AutocompleteResolver backed by catalog.
func NewAutocompleteResolver(catalog services.Catalog, opts AutocompleteOptions) *AutocompleteResolver {
	if opts.Limit <= 0 {
		opts.Limit = DefaultAutocompleteLimit
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &AutocompleteResolver{
		catalog: catalog,
		limit:   opts.Limit,
		market:  opts.Market,
		logger:  opts.Logger,
	}
}

// Suggest searches artists for input, drops same-named duplicates in favour of the most followed,
// keeps names that start with input and projects them to artists accepting only their own name.
//
// The returned slice is never nil. Empty input makes no catalog call; a catalog failure yields an
// empty slice together with the error.
func (r *AutocompleteResolver) Suggest(ctx context.Context, input string) ([]*models.Artist, error) {
	if strings.TrimSpace(input) == "" {
		return []*models.Artist{}, nil
	}

	autocompleteTotal.Inc()
	candidates, err := r.catalog.SearchArtists(ctx, input, r.limit, r.market)
	if err != nil {
		r.logger.Error("autocomplete search failed", "query", input, "error", err)
		return []*models.Artist{}, err
	}

	name := func(a services.CatalogArtist) string { return a.Name }
	survivors := matching.FilterPrefix(
		matching.Dedupe(candidates, name, services.CatalogArtist.FollowerCount),
		input,
		name,
	)

	artists := make([]*models.Artist, 0, len(survivors))
	for _, a := range survivors {
		artists = append(artists, models.NewArtist(a.ID, a.Name, services.FirstImageURL(a.Images)))
	}
	return artists, nil
}
