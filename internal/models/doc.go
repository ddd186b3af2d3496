// Package models defines domain entities for the artist-pair resolution service.
//
// Persistent entities:
//   - [Artist] : A catalog artist plus its accepted names (canonical name and user aliases)
//   - [Track] : A catalog track featuring exactly two confirmed artists
//
// Both implement the [Model] interface. Entities keep their fields private and expose accessors,
// with [ArtistView] and [TrackView] as their JSON shapes.
//
// Accepted names are matched literally by the resolution cache; fuzzy matching happens only once, when a
// pair of guesses is first resolved against the catalog.
package models
