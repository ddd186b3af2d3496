// Package tasks orchestrates guess resolution and artist autocomplete with real-time progress reporting.
//
// # Guess Resolution
//
// [GuessResolver.Resolve] moves a two-name guess through these phases:
//
//  1. [CacheCheck] : split the input on "," and look both names up in the [ResolutionCache]
//     - a hit returns the cached track and stops
//     - a lookup error is logged and treated as a miss
//  2. [CatalogSearch] : search tracks for "first second" (25 results, optional market)
//  3. [Matching] : take the first result, in catalog order, where each guess is within edit
//     distance 2 of one of its artists (the same artist may satisfy both)
//  4. [Persisted] : fetch both artist images concurrently, record the literal guesses as accepted
//     names and store the track
//  5. [Unresolved] : nothing matched, or the search returned no results
//
// The [GuessResult] status separates [Found], [NotFound], [Failed] (catalog or auth failure) and
// [Invalid] (input without two names).
//
// # Autocomplete
//
// [AutocompleteResolver.Suggest] searches up to 3 artists, keeps the most followed of any same-named
// artists, filters by normalized prefix and projects survivors to [models.Artist]. Empty input makes
// no catalog call.
//
// # Batch Resolution
//
// [GuessResolver.ResolveBatch] runs many guesses through a worker pool with a rate limit on how fast
// resolutions start, reporting per-guess results in input order.
//
// # Progress Reporting
//
// All operations accept an optional progress channel. Sends use select with default so a slow
// reader never blocks a resolution.
package tasks
