package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/featguess/internal/models"
)

var (
	_ list.Item = trackItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track *models.Track
}

func (i trackItem) FilterValue() string { return i.track.Name() }
func (i trackItem) Title() string       { return i.track.Name() }
func (i trackItem) Description() string {
	artists := i.track.Artists()
	desc := artists[0].Name()
	if artists[1].ID() != artists[0].ID() {
		desc = fmt.Sprintf("%s & %s", desc, artists[1].Name())
	}
	if i.track.ReleaseDate() != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.ReleaseDate())
	}
	return desc
}
