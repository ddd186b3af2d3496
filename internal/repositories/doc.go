// Package repositories implements SQLite persistence for resolved artists and tracks.
//
// Key Implementations:
//   - [ArtistRepository] : artists and their accepted names (one artist_names row per surface form)
//   - [TrackRepository] : tracks and their two artist slots, plus the symmetric guess lookup
//   - [TrackCacheAdapter] : the resolution cache used by the guess resolver
//
// Writes are idempotent upserts. A track row is inserted once and never updated; artists are
// created or reused by catalog id; accepted names are appended with INSERT OR IGNORE so concurrent
// identical writes are no-ops rather than constraint errors.
//
// Lookups match accepted names literally. Fuzzy matching happens only when a guess is first resolved.
package repositories
