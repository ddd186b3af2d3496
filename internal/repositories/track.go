package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/featguess/internal/models"
	"github.com/desertthunder/featguess/internal/shared"
)

// TrackRepository persists [models.Track] rows together with their two artist slots.
//
// Tracks are immutable: saving a track that already exists only appends new accepted names to its artists.
type TrackRepository struct {
	db *sql.DB
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{db: db}
}

// Save upserts the track and both artists in one transaction.
//
// Returns true when the track row was newly inserted.
func (r *TrackRepository) Save(ctx context.Context, track *models.Track) (bool, error) {
	if err := track.Validate(); err != nil {
		return false, fmt.Errorf("validation failed: %w", err)
	}

	var created bool
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		artists := track.Artists()
		for _, a := range artists {
			if err := upsertArtist(ctx, tx, a); err != nil {
				return err
			}
		}

		query := `
			INSERT OR IGNORE INTO tracks (id, name, image_url, release_date, preview_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`

		result, err := tx.ExecContext(ctx, query,
			track.ID(),
			track.Name(),
			track.ImageURL(),
			track.ReleaseDate(),
			track.PreviewURL(),
			track.CreatedAt(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert track: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if rows == 0 {
			return nil
		}

		created = true
		for pos, a := range artists {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO track_artists (track_id, artist_id, position) VALUES (?, ?, ?)`,
				track.ID(), a.ID(), pos,
			)
			if err != nil {
				return fmt.Errorf("failed to link artist %s to track %s: %w", a.ID(), track.ID(), err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

// Get retrieves a track and both of its artists by id
func (r *TrackRepository) Get(ctx context.Context, id string) (*models.Track, error) {
	return loadTrack(ctx, r.db, id)
}

// FindByGuesses returns the earliest persisted track where some artist accepts guess1 and some artist
// accepts guess2. The two filters are independent, so argument order does not matter.
func (r *TrackRepository) FindByGuesses(ctx context.Context, guess1, guess2 string) (*models.Track, error) {
	query := `
		SELECT t.id
		FROM tracks t
		WHERE EXISTS (
			SELECT 1 FROM track_artists ta
			JOIN artist_names n ON n.artist_id = ta.artist_id
			WHERE ta.track_id = t.id AND n.name = ?
		)
		AND EXISTS (
			SELECT 1 FROM track_artists ta
			JOIN artist_names n ON n.artist_id = ta.artist_id
			WHERE ta.track_id = t.id AND n.name = ?
		)
		ORDER BY t.created_at ASC, t.id ASC
		LIMIT 1
	`

	var id string
	err := r.db.QueryRowContext(ctx, query, guess1, guess2).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up track: %w", err)
	}

	return loadTrack(ctx, r.db, id)
}

// List retrieves persisted tracks, oldest first. A non-positive limit returns all of them.
func (r *TrackRepository) List(ctx context.Context, limit int) ([]*models.Track, error) {
	query := `SELECT id FROM tracks ORDER BY created_at ASC, id ASC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}

	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}

	tracks := make([]*models.Track, 0, len(ids))
	for _, id := range ids {
		track, err := loadTrack(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

// Count returns the number of persisted tracks.
func (r *TrackRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}

// loadTrack reads the track row, its artist slot ids, then each artist.
func loadTrack(ctx context.Context, q queryer, id string) (*models.Track, error) {
	var (
		name        string
		imageURL    string
		releaseDate string
		previewURL  string
		createdAt   time.Time
	)

	err := q.QueryRowContext(ctx,
		`SELECT name, image_url, release_date, preview_url, created_at FROM tracks WHERE id = ?`, id,
	).Scan(&name, &imageURL, &releaseDate, &previewURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT artist_id FROM track_artists WHERE track_id = ? ORDER BY position ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query track artists: %w", err)
	}

	artistIDs, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}
	if len(artistIDs) != 2 {
		return nil, fmt.Errorf("track %s has %d artists, expected 2", id, len(artistIDs))
	}

	var artists [2]*models.Artist
	for i, artistID := range artistIDs {
		a, err := loadArtist(ctx, q, artistID)
		if err != nil {
			return nil, err
		}
		artists[i] = a
	}

	track := models.NewTrack(id, name, imageURL, releaseDate, previewURL, artists[0], artists[1])
	track.SetCreatedAt(createdAt)
	return track, nil
}
