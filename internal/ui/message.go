package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgDebounce MsgKind = iota
	MsgSuggestions
	MsgProgressUpdate
	MsgGuessComplete
	MsgHistoryFetched
)

type suggestionsData struct {
	seq     int
	artists []*models.Artist
	err     error
}

type historyData struct {
	tracks []*models.Track
	err    error
}

// debounceMsg is the constructor for [MsgDebounce]; seq identifies the keystroke that scheduled it.
func debounceMsg(seq int) Msg {
	return Msg{kind: MsgDebounce, data: seq}
}

// suggestionsMsg is the constructor for [MsgSuggestions]
func suggestionsMsg(seq int, artists []*models.Artist, err error) Msg {
	return Msg{kind: MsgSuggestions, data: suggestionsData{seq, artists, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// guessCompleteMsg is the constructor for [MsgGuessComplete]
func guessCompleteMsg(result tasks.GuessResult) Msg {
	return Msg{kind: MsgGuessComplete, data: result}
}

// historyFetchedMsg is the constructor for [MsgHistoryFetched]
func historyFetchedMsg(tracks []*models.Track, err error) Msg {
	return Msg{kind: MsgHistoryFetched, data: historyData{tracks, err}}
}
