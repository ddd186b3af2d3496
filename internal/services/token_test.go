package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/featguess/internal/shared"
	"golang.org/x/oauth2"
)

// stubFetcher hands out tok-1, tok-2, ... and counts how often it was asked.
type stubFetcher struct {
	mu    sync.Mutex
	calls int
	err   error
	gate  chan struct{}
}

func (f *stubFetcher) Token(ctx context.Context) (*oauth2.Token, error) {
	if f.gate != nil {
		<-f.gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &oauth2.Token{
		AccessToken: fmt.Sprintf("tok-%d", f.calls),
		TokenType:   "Bearer",
		Expiry:      time.Now().Add(time.Hour),
	}, nil
}

func (f *stubFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func quietLogger() *log.Logger {
	logger := shared.NewLogger(nil)
	shared.SetLogLevel(logger, log.FatalLevel)
	return logger
}

func TestTokenProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("NewTokenProvider", func(t *testing.T) {
		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewTokenProvider(shared.SpotifyConfig{ClientSecret: "secret"}, "", nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewTokenProvider(shared.SpotifyConfig{ClientID: "id"}, "", nil)
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Client Credentials Grant", func(t *testing.T) {
			var hits atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				id, secret, ok := r.BasicAuth()
				if !ok || id != "test_client_id" || secret != "test_client_secret" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, `{"access_token":"granted","token_type":"bearer","expires_in":3600}`)
			}))
			defer srv.Close()

			creds := shared.SpotifyConfig{ClientID: "test_client_id", ClientSecret: "test_client_secret"}
			provider, err := NewTokenProvider(creds, srv.URL, quietLogger())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			tok, err := provider.Access(ctx)
			if err != nil {
				t.Fatalf("expected token, got %v", err)
			}
			if tok != "granted" {
				t.Errorf("expected token 'granted', got %s", tok)
			}

			if _, err := provider.Access(ctx); err != nil {
				t.Fatalf("expected cached token, got %v", err)
			}
			if hits.Load() != 1 {
				t.Errorf("expected one token request, got %d", hits.Load())
			}
		})
	})

	t.Run("Refresh", func(t *testing.T) {
		t.Run("replaces rejected token", func(t *testing.T) {
			fetcher := &stubFetcher{}
			provider := NewTokenProviderWith(fetcher, quietLogger())

			first, _ := provider.Access(ctx)
			second, err := provider.Refresh(ctx, first)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if second == first {
				t.Errorf("expected a new token, got %s again", second)
			}
			if fetcher.count() != 2 {
				t.Errorf("expected 2 fetches, got %d", fetcher.count())
			}
		})

		t.Run("stale rejection reuses newer token", func(t *testing.T) {
			fetcher := &stubFetcher{}
			provider := NewTokenProviderWith(fetcher, quietLogger())

			first, _ := provider.Access(ctx)
			second, _ := provider.Refresh(ctx, first)

			got, err := provider.Refresh(ctx, first)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != second {
				t.Errorf("expected %s, got %s", second, got)
			}
			if fetcher.count() != 2 {
				t.Errorf("expected no extra fetch, got %d fetches", fetcher.count())
			}
		})

		t.Run("concurrent callers share one fetch", func(t *testing.T) {
			fetcher := &stubFetcher{gate: make(chan struct{})}
			provider := NewTokenProviderWith(fetcher, quietLogger())

			const callers = 20
			var wg sync.WaitGroup
			results := make([]string, callers)
			errs := make([]error, callers)

			for i := range callers {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i], errs[i] = provider.Refresh(ctx, "")
				}(i)
			}

			time.Sleep(20 * time.Millisecond)
			close(fetcher.gate)
			wg.Wait()

			for i := range callers {
				if errs[i] != nil {
					t.Fatalf("caller %d failed: %v", i, errs[i])
				}
				if results[i] != "tok-1" {
					t.Errorf("caller %d got %s, want tok-1", i, results[i])
				}
			}
			if fetcher.count() != 1 {
				t.Errorf("expected exactly one fetch, got %d", fetcher.count())
			}
		})

		t.Run("fetch failure", func(t *testing.T) {
			fetcher := &stubFetcher{err: errors.New("token endpoint down")}
			provider := NewTokenProviderWith(fetcher, quietLogger())

			if _, err := provider.Access(ctx); !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrRefreshFailed, got %v", err)
			}
		})

		t.Run("caller context cancelled", func(t *testing.T) {
			fetcher := &stubFetcher{gate: make(chan struct{})}
			defer close(fetcher.gate)
			provider := NewTokenProviderWith(fetcher, quietLogger())

			cctx, cancel := context.WithCancel(ctx)
			cancel()

			if _, err := provider.Refresh(cctx, ""); !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		})

		t.Run("expired token is refreshed", func(t *testing.T) {
			fetcher := &stubFetcher{}
			provider := NewTokenProviderWith(fetcher, quietLogger())
			provider.current = &oauth2.Token{AccessToken: "old", Expiry: time.Now().Add(-time.Minute)}

			tok, err := provider.Access(ctx)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tok != "tok-1" {
				t.Errorf("expected tok-1, got %s", tok)
			}
		})
	})
}
