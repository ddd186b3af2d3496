// Spotify Web API implementation of [Catalog]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/search
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/shared"
	"golang.org/x/time/rate"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// CatalogOptions configures a [SpotifyCatalog].
type CatalogOptions struct {
	BaseURL           string
	MaxAuthRetries    int
	RequestsPerSecond float64
	Timeout           time.Duration
	HTTPClient        *http.Client
	Logger            *log.Logger
}

// CatalogOptionsFromConfig maps the [catalog] config section onto [CatalogOptions].
func CatalogOptionsFromConfig(cfg shared.CatalogConfig, logger *log.Logger) CatalogOptions {
	return CatalogOptions{
		BaseURL:           cfg.BaseURL,
		MaxAuthRetries:    cfg.MaxAuthRetries,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           cfg.Timeout(),
		Logger:            logger,
	}
}

var _ Catalog = (*SpotifyCatalog)(nil)

// SpotifyCatalog implements the [Catalog] interface against the Spotify Web API.
type SpotifyCatalog struct {
	baseURL    string
	httpClient *http.Client
	tokens     AccessTokens
	limiter    *rate.Limiter
	maxRetries int
	logger     *log.Logger
}

// NewSpotifyCatalog creates a catalog client that authenticates with tokens.
func NewSpotifyCatalog(tokens AccessTokens, opts CatalogOptions) *SpotifyCatalog {
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}
	if opts.MaxAuthRetries < 0 {
		opts.MaxAuthRetries = 0
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SpotifyCatalog{
		baseURL:    strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient: client,
		tokens:     tokens,
		limiter:    rate.NewLimiter(limit, 1),
		maxRetries: opts.MaxAuthRetries,
		logger:     logger,
	}
}

// SearchTracks searches tracks matching query.
func (c *SpotifyCatalog) SearchTracks(ctx context.Context, query string, limit int, market string) ([]CatalogTrack, error) {
	var response struct {
		Tracks *struct {
			Items []CatalogTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := c.doRequest(ctx, "search", c.searchURL(query, "track", limit, market), &response); err != nil {
		return nil, err
	}

	if response.Tracks == nil {
		return nil, nil
	}
	return response.Tracks.Items, nil
}

// SearchArtists searches artists matching query.
func (c *SpotifyCatalog) SearchArtists(ctx context.Context, query string, limit int, market string) ([]CatalogArtist, error) {
	var response struct {
		Artists *struct {
			Items []CatalogArtist `json:"items"`
		} `json:"artists"`
	}

	if err := c.doRequest(ctx, "search", c.searchURL(query, "artist", limit, market), &response); err != nil {
		return nil, err
	}

	if response.Artists == nil {
		return nil, nil
	}
	return response.Artists.Items, nil
}

// ArtistImage retrieves the full artist object referenced by artist.Href (or its ID) and returns its first image.
func (c *SpotifyCatalog) ArtistImage(ctx context.Context, artist CatalogArtist) (string, error) {
	endpoint := artist.Href
	if endpoint == "" {
		if artist.ID == "" {
			return "", fmt.Errorf("%w: artist has neither href nor id", shared.ErrInvalidArgument)
		}
		endpoint = c.baseURL + "/artists/" + url.PathEscape(artist.ID)
	}

	var full CatalogArtist
	if err := c.doRequest(ctx, "artist", endpoint, &full); err != nil {
		return "", err
	}
	return FirstImageURL(full.Images), nil
}

func (c *SpotifyCatalog) searchURL(query, kind string, limit int, market string) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", kind)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if market != "" {
		params.Set("market", market)
	}
	return c.baseURL + "/search?" + params.Encode()
}

// doRequest performs an authenticated GET, refreshing the token and retrying on auth failures.
func (c *SpotifyCatalog) doRequest(ctx context.Context, endpoint, rawURL string, result any) error {
	token, err := c.tokens.Access(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		err := c.get(ctx, endpoint, rawURL, token, result)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrAuthFailed) || attempt >= c.maxRetries {
			return err
		}

		c.logger.Warn("catalog rejected token, refreshing", "endpoint", endpoint, "attempt", attempt+1)
		token, err = c.tokens.Refresh(ctx, token)
		if err != nil {
			return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
		}
	}
}

func (c *SpotifyCatalog) get(ctx context.Context, endpoint, rawURL, token string, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordCatalogRequest(endpoint, 0)
		return fmt.Errorf("%w: %w", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	recordCatalogRequest(endpoint, resp.StatusCode)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: spotify API status %d", shared.ErrAuthFailed, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: spotify API status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %w", shared.ErrNetwork, err)
		}
	}

	return nil
}
