package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// TokenFetcher obtains a fresh token from the token endpoint. [clientcredentials.Config] satisfies it.
type TokenFetcher interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// AccessTokens supplies bearer tokens to the catalog.
type AccessTokens interface {
	// Access returns the current token, fetching one if none is held or it has expired.
	Access(ctx context.Context) (string, error)

	// Refresh replaces rejected with a new token. If another caller already replaced it,
	// the newer token is returned without another fetch.
	Refresh(ctx context.Context, rejected string) (string, error)
}

// TokenProvider owns the shared access token and serializes refreshes.
type TokenProvider struct {
	fetcher TokenFetcher
	logger  *log.Logger

	mu      sync.RWMutex
	current *oauth2.Token
	group   singleflight.Group
}

// NewTokenProvider creates a provider that uses the client credentials grant against tokenURL
// (the Spotify accounts service when empty).
//
// Returns [shared.ErrMissingCredentials] when either half of the client identity is empty.
func NewTokenProvider(creds shared.SpotifyConfig, tokenURL string, logger *log.Logger) (*TokenProvider, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: spotify client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if tokenURL == "" {
		tokenURL = spotifyTokenURL
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	return NewTokenProviderWith(config, logger), nil
}

// NewTokenProviderWith creates a provider around an arbitrary [TokenFetcher].
func NewTokenProviderWith(fetcher TokenFetcher, logger *log.Logger) *TokenProvider {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TokenProvider{fetcher: fetcher, logger: logger}
}

// Access returns the held token while it is valid and otherwise refreshes it.
func (p *TokenProvider) Access(ctx context.Context) (string, error) {
	if tok := p.valid(""); tok != "" {
		return tok, nil
	}
	return p.Refresh(ctx, "")
}

// Refresh fetches a new token unless the held one is valid and differs from rejected.
//
// Concurrent callers share a single in-flight token request. The request itself is not
// cancelled when one caller's context is; each caller stops waiting on its own context.
func (p *TokenProvider) Refresh(ctx context.Context, rejected string) (string, error) {
	if tok := p.valid(rejected); tok != "" {
		return tok, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := p.group.DoChan("refresh", func() (any, error) {
		if tok := p.valid(rejected); tok != "" {
			return tok, nil
		}

		tok, err := p.fetcher.Token(fetchCtx)
		if err != nil {
			tokenRefreshTotal.WithLabelValues("error").Inc()
			p.logger.Error("token refresh failed", "error", err)
			return "", fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
		}
		if tok == nil || tok.AccessToken == "" {
			tokenRefreshTotal.WithLabelValues("error").Inc()
			return "", fmt.Errorf("%w: empty access token", shared.ErrRefreshFailed)
		}

		p.mu.Lock()
		p.current = tok
		p.mu.Unlock()

		tokenRefreshTotal.WithLabelValues("success").Inc()
		p.logger.Debug("access token refreshed", "expiry", tok.Expiry)
		return tok.AccessToken, nil
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// valid returns the held access token if it has not expired and is not the rejected one.
func (p *TokenProvider) valid(rejected string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.current == nil || !p.current.Valid() || p.current.AccessToken == rejected {
		return ""
	}
	return p.current.AccessToken
}
