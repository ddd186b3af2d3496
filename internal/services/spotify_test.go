package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/desertthunder/featguess/internal/shared"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const trackSearchBody = `{
  "tracks": {
    "items": [
      {
        "id": "track-1",
        "name": "Otis",
        "preview_url": "https://p.scdn.co/mp3-preview/otis",
        "album": {
          "name": "Watch The Throne",
          "release_date": "2011-08-08",
          "images": [{"url": "https://i.scdn.co/image/wtt", "height": 640, "width": 640}]
        },
        "artists": [
          {"id": "jayz", "name": "JAY-Z", "href": "https://api.spotify.com/v1/artists/jayz"},
          {"id": "kanye", "name": "Kanye West", "href": "https://api.spotify.com/v1/artists/kanye"}
        ]
      }
    ]
  }
}`

func newTestCatalog(t *testing.T, handler http.HandlerFunc, retries int) (*SpotifyCatalog, *stubFetcher) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fetcher := &stubFetcher{}
	catalog := NewSpotifyCatalog(NewTokenProviderWith(fetcher, quietLogger()), CatalogOptions{
		BaseURL:        srv.URL,
		MaxAuthRetries: retries,
		HTTPClient:     srv.Client(),
		Logger:         quietLogger(),
	})
	return catalog, fetcher
}

func TestSpotifyCatalog(t *testing.T) {
	ctx := context.Background()

	t.Run("SearchTracks", func(t *testing.T) {
		var gotQuery, gotAuth string
		catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			gotAuth = r.Header.Get("Authorization")
			if r.URL.Path != "/search" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, trackSearchBody)
		}, 1)

		tracks, err := catalog.SearchTracks(ctx, "kanye jay z", 25, "US")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(tracks) != 1 {
			t.Fatalf("expected 1 track, got %d", len(tracks))
		}

		track := tracks[0]
		if track.ID != "track-1" || track.Album.ReleaseDate != "2011-08-08" {
			t.Errorf("unexpected track %+v", track)
		}
		if FirstImageURL(track.Album.Images) != "https://i.scdn.co/image/wtt" {
			t.Errorf("unexpected album image %q", FirstImageURL(track.Album.Images))
		}
		if got := strings.Join(track.ArtistNames(), ","); got != "JAY-Z,Kanye West" {
			t.Errorf("unexpected artists %s", got)
		}

		for _, want := range []string{"q=kanye+jay+z", "type=track", "limit=25", "market=US"} {
			if !strings.Contains(gotQuery, want) {
				t.Errorf("query %q missing %q", gotQuery, want)
			}
		}
		if gotAuth != "Bearer tok-1" {
			t.Errorf("expected bearer token, got %q", gotAuth)
		}
	})

	t.Run("SearchTracks Without Market", func(t *testing.T) {
		var gotQuery string
		catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.RawQuery
			fmt.Fprint(w, `{"tracks":{"items":[]}}`)
		}, 1)

		if _, err := catalog.SearchTracks(ctx, "a b", 25, ""); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Contains(gotQuery, "market=") {
			t.Errorf("market should be omitted, got %q", gotQuery)
		}
	})

	t.Run("Missing Result Object", func(t *testing.T) {
		catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		}, 1)

		tracks, err := catalog.SearchTracks(ctx, "nothing", 25, "")
		if err != nil || len(tracks) != 0 {
			t.Errorf("expected no tracks and no error, got %v, %v", tracks, err)
		}

		artists, err := catalog.SearchArtists(ctx, "nothing", 3, "FR")
		if err != nil || len(artists) != 0 {
			t.Errorf("expected no artists and no error, got %v, %v", artists, err)
		}
	})

	t.Run("SearchArtists", func(t *testing.T) {
		catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("type") != "artist" || r.URL.Query().Get("limit") != "3" {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			fmt.Fprint(w, `{"artists":{"items":[
				{"id":"a1","name":"Drake","followers":{"total":5000},"images":[{"url":"https://img/drake"}]},
				{"id":"a2","name":"Drake Bell","followers":{"total":10}}
			]}}`)
		}, 1)

		artists, err := catalog.SearchArtists(ctx, "drake", 3, "FR")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(artists) != 2 {
			t.Fatalf("expected 2 artists, got %d", len(artists))
		}
		if artists[0].FollowerCount() != 5000 {
			t.Errorf("expected 5000 followers, got %d", artists[0].FollowerCount())
		}
		if FirstImageURL(artists[1].Images) != "" {
			t.Errorf("expected no image for second artist")
		}
	})

	t.Run("ArtistImage", func(t *testing.T) {
		var paths []string
		catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			switch r.URL.Path {
			case "/artists/kanye":
				fmt.Fprint(w, `{"id":"kanye","images":[{"url":"https://img/kanye-large"},{"url":"https://img/kanye-small"}]}`)
			default:
				fmt.Fprint(w, `{"id":"other","images":[]}`)
			}
		}, 1)

		image, err := catalog.ArtistImage(ctx, CatalogArtist{ID: "kanye", Href: catalog.baseURL + "/artists/kanye"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if image != "https://img/kanye-large" {
			t.Errorf("expected first image, got %q", image)
		}

		image, err = catalog.ArtistImage(ctx, CatalogArtist{ID: "jayz"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if image != "" {
			t.Errorf("expected empty image, got %q", image)
		}
		if paths[1] != "/artists/jayz" {
			t.Errorf("expected id fallback path, got %s", paths[1])
		}

		if _, err := catalog.ArtistImage(ctx, CatalogArtist{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Auth Retry", func(t *testing.T) {
		t.Run("refreshes once and re-issues request", func(t *testing.T) {
			var hits atomic.Int32
			catalog, fetcher := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				if r.Header.Get("Authorization") != "Bearer tok-2" {
					w.WriteHeader(http.StatusUnauthorized)
					return
				}
				fmt.Fprint(w, trackSearchBody)
			}, 1)

			before := testutil.ToFloat64(catalogRequestsTotal.WithLabelValues("search", "401"))

			tracks, err := catalog.SearchTracks(ctx, "kanye jay z", 25, "")
			if err != nil {
				t.Fatalf("expected retry to succeed, got %v", err)
			}
			if len(tracks) != 1 {
				t.Errorf("expected 1 track, got %d", len(tracks))
			}
			if hits.Load() != 2 {
				t.Errorf("expected 2 requests, got %d", hits.Load())
			}
			if fetcher.count() != 2 {
				t.Errorf("expected 2 token fetches, got %d", fetcher.count())
			}

			after := testutil.ToFloat64(catalogRequestsTotal.WithLabelValues("search", "401"))
			if after-before != 1 {
				t.Errorf("expected one 401 recorded, got %v", after-before)
			}
		})

		t.Run("bad request also refreshes", func(t *testing.T) {
			catalog, fetcher := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") == "Bearer tok-1" {
					w.WriteHeader(http.StatusBadRequest)
					return
				}
				fmt.Fprint(w, `{"artists":{"items":[]}}`)
			}, 1)

			if _, err := catalog.SearchArtists(ctx, "x", 3, "FR"); err != nil {
				t.Fatalf("expected retry to succeed, got %v", err)
			}
			if fetcher.count() != 2 {
				t.Errorf("expected 2 token fetches, got %d", fetcher.count())
			}
		})

		t.Run("bounded retries", func(t *testing.T) {
			var hits atomic.Int32
			catalog, fetcher := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
			}, 1)

			_, err := catalog.SearchTracks(ctx, "a b", 25, "")
			if !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if hits.Load() != 2 {
				t.Errorf("expected 2 requests, got %d", hits.Load())
			}
			if fetcher.count() != 2 {
				t.Errorf("expected 2 token fetches, got %d", fetcher.count())
			}
		})

		t.Run("zero retries", func(t *testing.T) {
			var hits atomic.Int32
			catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				w.WriteHeader(http.StatusUnauthorized)
			}, 0)

			if _, err := catalog.SearchTracks(ctx, "a b", 25, ""); !errors.Is(err, shared.ErrAuthFailed) {
				t.Fatalf("expected ErrAuthFailed, got %v", err)
			}
			if hits.Load() != 1 {
				t.Errorf("expected 1 request, got %d", hits.Load())
			}
		})
	})

	t.Run("Errors", func(t *testing.T) {
		t.Run("server error is not retried", func(t *testing.T) {
			var hits atomic.Int32
			catalog, fetcher := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				hits.Add(1)
				http.Error(w, "upstream", http.StatusInternalServerError)
			}, 1)

			_, err := catalog.SearchTracks(ctx, "a b", 25, "")
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Fatalf("expected ErrAPIRequest, got %v", err)
			}
			if hits.Load() != 1 || fetcher.count() != 1 {
				t.Errorf("expected single attempt, got %d requests and %d fetches", hits.Load(), fetcher.count())
			}
		})

		t.Run("malformed body", func(t *testing.T) {
			catalog, _ := newTestCatalog(t, func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `{"tracks": [`)
			}, 1)

			if _, err := catalog.SearchTracks(ctx, "a b", 25, ""); !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("transport failure", func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			srv.Close()

			catalog := NewSpotifyCatalog(NewTokenProviderWith(&stubFetcher{}, quietLogger()), CatalogOptions{
				BaseURL: srv.URL,
				Logger:  quietLogger(),
			})

			if _, err := catalog.SearchTracks(ctx, "a b", 25, ""); !errors.Is(err, shared.ErrNetwork) {
				t.Errorf("expected ErrNetwork, got %v", err)
			}
		})

		t.Run("token failure", func(t *testing.T) {
			catalog := NewSpotifyCatalog(NewTokenProviderWith(&stubFetcher{err: errors.New("down")}, quietLogger()), CatalogOptions{
				BaseURL: "http://127.0.0.1:0",
				Logger:  quietLogger(),
			})

			_, err := catalog.SearchTracks(ctx, "a b", 25, "")
			if !errors.Is(err, shared.ErrAuthFailed) || !errors.Is(err, shared.ErrRefreshFailed) {
				t.Errorf("expected ErrAuthFailed wrapping ErrRefreshFailed, got %v", err)
			}
		})
	})
}
