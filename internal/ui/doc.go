// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a small guessing game:
//  1. [GuessView] : type two artist names separated by a comma, with debounced autocomplete for the name being typed
//  2. [ResolvingView] : spinner and live phase while the guess resolves
//  3. [ResultView] : the shared track, whether it came from the cache, and a shortcut to open its preview
//  4. [HistoryView] : browse previously resolved tracks
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Autocomplete requests carry the keystroke sequence number that scheduled them so stale suggestions are dropped.
// Progress updates flow through a channel from the resolver, providing non-blocking status reporting.
//
// Contextual help is displayed via charmbracelet/bubbles/help. Logs should go to a file while the TUI owns the terminal.
package ui
