// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/featguess/internal/services"
)

// FakeCatalog is a test double for [services.Catalog] that serves canned results and counts calls.
type FakeCatalog struct {
	mu sync.Mutex

	Tracks  []services.CatalogTrack
	Artists []services.CatalogArtist
	Images  map[string]string // artist id → image url
	Err     error             // returned by every search when set
	ImgErr  error             // returned by ArtistImage when set

	TrackSearches  int
	ArtistSearches int
	ImageLookups   int
	LastQuery      string
	LastMarket     string
	LastLimit      int
}

var _ services.Catalog = (*FakeCatalog)(nil)

func (f *FakeCatalog) SearchTracks(ctx context.Context, query string, limit int, market string) ([]services.CatalogTrack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TrackSearches++
	f.LastQuery, f.LastLimit, f.LastMarket = query, limit, market
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Tracks, nil
}

func (f *FakeCatalog) SearchArtists(ctx context.Context, query string, limit int, market string) ([]services.CatalogArtist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ArtistSearches++
	f.LastQuery, f.LastLimit, f.LastMarket = query, limit, market
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Artists, nil
}

func (f *FakeCatalog) ArtistImage(ctx context.Context, artist services.CatalogArtist) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ImageLookups++
	if f.ImgErr != nil {
		return "", f.ImgErr
	}
	return f.Images[artist.ID], nil
}

// Calls returns the total number of catalog calls made.
func (f *FakeCatalog) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.TrackSearches + f.ArtistSearches + f.ImageLookups
}

// Reset zeroes the call counters.
func (f *FakeCatalog) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.TrackSearches, f.ArtistSearches, f.ImageLookups = 0, 0, 0
}

// CatalogTrack builds a catalog track whose artists are named names, with ids derived from the names.
func CatalogTrack(id, name string, names ...string) services.CatalogTrack {
	t := services.CatalogTrack{
		ID:         id,
		Name:       name,
		PreviewURL: "https://p.scdn.co/mp3-preview/" + id,
		Album: services.CatalogAlbum{
			Name:        name,
			ReleaseDate: "2011-08-08",
			Images:      []services.Image{{URL: "https://i.scdn.co/image/" + id, Height: 640, Width: 640}},
		},
	}
	for i, n := range names {
		artistID := fmt.Sprintf("%s-artist-%d", id, i)
		t.Artists = append(t.Artists, services.CatalogArtist{ID: artistID, Name: n, Href: "https://api.spotify.com/v1/artists/" + artistID})
	}
	return t
}

// CatalogArtist builds a standalone artist search result.
func CatalogArtist(id, name string, followers int, images ...string) services.CatalogArtist {
	a := services.CatalogArtist{ID: id, Name: name, Followers: services.Followers{Total: followers}}
	for _, img := range images {
		a.Images = append(a.Images, services.Image{URL: img})
	}
	return a
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
