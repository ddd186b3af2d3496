// package services defines interface Catalog for interacting with the remote music catalog
package services

import (
	"context"
)

// Catalog defines the search and lookup operations the resolvers need from a music catalog.
type Catalog interface {
	// SearchTracks returns up to limit tracks for query, in the catalog's relevance order.
	// An empty market searches every market.
	SearchTracks(ctx context.Context, query string, limit int, market string) ([]CatalogTrack, error)

	// SearchArtists returns up to limit artists for query, in the catalog's relevance order.
	SearchArtists(ctx context.Context, query string, limit int, market string) ([]CatalogArtist, error)

	// ArtistImage looks up a single artist and returns the URL of its first image, or "" when it has none.
	ArtistImage(ctx context.Context, artist CatalogArtist) (string, error)
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// FirstImageURL returns the URL of the first image, or "" for an empty list.
func FirstImageURL(images []Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}

// Followers holds an artist's follower count.
type Followers struct {
	Total int `json:"total"`
}

// CatalogArtist represents an artist as returned by the catalog.
//
// Artists nested in track results carry only ID, Name and Href.
type CatalogArtist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Href       string    `json:"href"`
	Followers  Followers `json:"followers"`
	Images     []Image   `json:"images"`
	Popularity int       `json:"popularity"`
}

// FollowerCount is the popularity metric used to pick between same-named artists.
func (a CatalogArtist) FollowerCount() int {
	return a.Followers.Total
}

// CatalogAlbum represents the album a track belongs to.
type CatalogAlbum struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ReleaseDate string  `json:"release_date"`
	Images      []Image `json:"images"`
}

// CatalogTrack represents a track search result.
type CatalogTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []CatalogArtist `json:"artists"`
	Album      CatalogAlbum    `json:"album"`
	PreviewURL string          `json:"preview_url"`
	Popularity int             `json:"popularity"`
}

// ArtistNames returns the names of the track's artists in catalog order.
func (t CatalogTrack) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}
