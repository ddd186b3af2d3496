// package formatter renders resolved tracks and artist suggestions as plain text, CSV, Markdown and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat maps a flag value to a [Format]. "md" and "txt" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// Export renders tracks in the given format.
func Export(tracks []*models.Track, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(tracks)
	case FormatMarkdown:
		return ExportToMarkdown(tracks, "Resolved Tracks")
	case FormatJSON:
		return ExportToJSON(tracks)
	default:
		return ExportToText(tracks)
	}
}

// ExportToCSV converts tracks to CSV with columns: ID, Name, Release Date, First Artist, Second Artist, Accepted Names, Preview URL
//
// Accepted names of both artists are joined with "|".
func ExportToCSV(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Release Date", "First Artist", "Second Artist", "Accepted Names", "Preview URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		artists := track.Artists()
		record := []string{
			track.ID(),
			track.Name(),
			track.ReleaseDate(),
			artists[0].Name(),
			artists[1].Name(),
			strings.Join(acceptedNames(track), "|"),
			track.PreviewURL(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts tracks to a Markdown document headed by title.
func ExportToMarkdown(tracks []*models.Track, title string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Tracks**: %d\n\n", len(tracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracks {
		artists := track.Artists()
		fmt.Fprintf(&buf, "%d. %s - %s", i+1, artistPair(artists), track.Name())
		if track.ReleaseDate() != "" {
			fmt.Fprintf(&buf, " (%s)", track.ReleaseDate())
		}
		buf.WriteString("\n")

		if names := acceptedNames(track); len(names) > 0 {
			fmt.Fprintf(&buf, "   - accepts: %s\n", strings.Join(names, ", "))
		}
		if track.ImageURL() != "" {
			fmt.Fprintf(&buf, "   - ![%s](%s)\n", track.Name(), track.ImageURL())
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts tracks to plain text, one line per track.
func ExportToText(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))
	for i, track := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, artistPair(track.Artists()), track.Name())
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts tracks to an indented JSON array of [models.TrackView].
func ExportToJSON(tracks []*models.Track) ([]byte, error) {
	views := make([]models.TrackView, 0, len(tracks))
	for _, t := range tracks {
		views = append(views, t.View())
	}

	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return data, nil
}

// WriteExport renders tracks in format and writes them to path.
func WriteExport(tracks []*models.Track, format Format, path string) error {
	data, err := Export(tracks, format)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

// WriteTrack prints a resolved track as a short human-readable block.
func WriteTrack(w io.Writer, track *models.Track, cached bool) error {
	source := "catalog"
	if cached {
		source = "cache"
	}

	artists := track.Artists()
	lines := []string{
		fmt.Sprintf("✓ %s - %s", artistPair(artists), track.Name()),
		fmt.Sprintf("  ID:       %s", track.ID()),
		fmt.Sprintf("  Released: %s", track.ReleaseDate()),
		fmt.Sprintf("  Source:   %s", source),
	}
	if track.PreviewURL() != "" {
		lines = append(lines, fmt.Sprintf("  Preview:  %s", track.PreviewURL()))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// WriteArtists prints one suggestion per line.
func WriteArtists(w io.Writer, artists []*models.Artist) error {
	if len(artists) == 0 {
		_, err := fmt.Fprintln(w, "no suggestions")
		return err
	}

	for i, a := range artists {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, a.Name()); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func artistPair(artists [2]*models.Artist) string {
	if artists[0].ID() == artists[1].ID() {
		return artists[0].Name()
	}
	return artists[0].Name() + " & " + artists[1].Name()
}

// acceptedNames lists the accepted names of both artists once each, in slot order.
func acceptedNames(track *models.Track) []string {
	artists := track.Artists()
	seen := map[string]bool{}
	var names []string
	for i, a := range artists {
		if i == 1 && a.ID() == artists[0].ID() {
			break
		}
		for _, n := range a.AcceptedNames() {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	return names
}
