// package models defines the data model for the artist-pair resolution service
package models

import (
	"fmt"
	"slices"
	"time"
)

// Model defines the base interface for persisted entities.
type Model interface {
	ID() string           // ID returns the catalog-assigned identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was first persisted
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Artist is a catalog artist together with every surface form users have typed to reach it.
//
// AcceptedNames always contains Name and only ever grows.
type Artist struct {
	id            string
	name          string
	acceptedNames []string
	imageURL      string
	createdAt     time.Time
}

// NewArtist creates an [Artist] whose accepted names hold only its canonical name.
func NewArtist(id, name, imageURL string) *Artist {
	return &Artist{
		id:            id,
		name:          name,
		acceptedNames: []string{name},
		imageURL:      imageURL,
		createdAt:     time.Now(),
	}
}

func (a *Artist) ID() string               { return a.id }
func (a *Artist) Name() string             { return a.name }
func (a *Artist) ImageURL() string         { return a.imageURL }
func (a *Artist) CreatedAt() time.Time     { return a.createdAt }
func (a *Artist) AcceptedNames() []string  { return slices.Clone(a.acceptedNames) }
func (a *Artist) SetImageURL(url string)   { a.imageURL = url }
func (a *Artist) SetCreatedAt(t time.Time) { a.createdAt = t }

// Accepts reports whether name is literally one of the artist's accepted names.
func (a *Artist) Accepts(name string) bool {
	return slices.Contains(a.acceptedNames, name)
}

// Accept appends name as an alias unless it is empty or already accepted.
// Returns true if the alias was added.
func (a *Artist) Accept(name string) bool {
	if name == "" || a.Accepts(name) {
		return false
	}
	a.acceptedNames = append(a.acceptedNames, name)
	return true
}

// Validate checks that the artist has an id, a name, and accepts its own name.
func (a *Artist) Validate() error {
	if a.id == "" {
		return fmt.Errorf("artist id is required")
	}
	if a.name == "" {
		return fmt.Errorf("artist name is required")
	}
	if !a.Accepts(a.name) {
		return fmt.Errorf("artist %s does not accept its canonical name", a.id)
	}
	return nil
}

// Track is a catalog track featuring exactly two confirmed artists. The order of the two slots carries no meaning.
//
// Tracks are immutable once persisted.
type Track struct {
	id          string
	name        string
	imageURL    string
	releaseDate string
	previewURL  string
	artists     [2]*Artist
	createdAt   time.Time
}

// NewTrack creates a [Track] from its catalog fields and its two matched artists.
func NewTrack(id, name, imageURL, releaseDate, previewURL string, first, second *Artist) *Track {
	return &Track{
		id:          id,
		name:        name,
		imageURL:    imageURL,
		releaseDate: releaseDate,
		previewURL:  previewURL,
		artists:     [2]*Artist{first, second},
		createdAt:   time.Now(),
	}
}

func (t *Track) ID() string               { return t.id }
func (t *Track) Name() string             { return t.name }
func (t *Track) ImageURL() string         { return t.imageURL }
func (t *Track) ReleaseDate() string      { return t.releaseDate }
func (t *Track) PreviewURL() string       { return t.previewURL }
func (t *Track) Artists() [2]*Artist      { return t.artists }
func (t *Track) CreatedAt() time.Time     { return t.createdAt }
func (t *Track) SetCreatedAt(c time.Time) { t.createdAt = c }

// Validate checks the track's identity and both artist slots.
func (t *Track) Validate() error {
	if t.id == "" {
		return fmt.Errorf("track id is required")
	}
	if t.name == "" {
		return fmt.Errorf("track name is required")
	}
	for i, a := range t.artists {
		if a == nil {
			return fmt.Errorf("track %s is missing artist %d", t.id, i)
		}
		if err := a.Validate(); err != nil {
			return fmt.Errorf("track %s artist %d: %w", t.id, i, err)
		}
	}
	return nil
}

// ArtistView is the serializable shape of an [Artist].
type ArtistView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	AcceptedNames []string `json:"acceptedNames"`
	ImageURL      string   `json:"artistImage"`
}

// TrackView is the serializable shape of a [Track].
type TrackView struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	ImageURL    string        `json:"trackImage"`
	ReleaseDate string        `json:"releaseDate"`
	PreviewURL  string        `json:"previewUrl,omitempty"`
	Artists     [2]ArtistView `json:"artists"`
}

// View returns the serializable form of the artist.
func (a *Artist) View() ArtistView {
	return ArtistView{ID: a.id, Name: a.name, AcceptedNames: a.AcceptedNames(), ImageURL: a.imageURL}
}

// View returns the serializable form of the track.
func (t *Track) View() TrackView {
	v := TrackView{
		ID:          t.id,
		Name:        t.name,
		ImageURL:    t.imageURL,
		ReleaseDate: t.releaseDate,
		PreviewURL:  t.previewURL,
	}
	for i, a := range t.artists {
		if a != nil {
			v.Artists[i] = a.View()
		}
	}
	return v
}

// RestoreArtist rebuilds an [Artist] from persisted fields. The canonical name is prepended to names when absent.
func RestoreArtist(id, name, imageURL string, names []string, createdAt time.Time) *Artist {
	a := &Artist{id: id, name: name, imageURL: imageURL, createdAt: createdAt, acceptedNames: []string{name}}
	for _, n := range names {
		a.Accept(n)
	}
	return a
}
