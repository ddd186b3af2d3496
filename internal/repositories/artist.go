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

// ArtistRepository persists [models.Artist] rows and their accepted names.
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Save creates the artist or reuses the existing row by id, then appends any accepted names not yet stored.
func (r *ArtistRepository) Save(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return upsertArtist(ctx, tx, artist)
	})
}

// Get retrieves an artist and its accepted names by id.
func (r *ArtistRepository) Get(ctx context.Context, id string) (*models.Artist, error) {
	return loadArtist(ctx, r.db, id)
}

// List retrieves every persisted artist ordered by name.
func (r *ArtistRepository) List(ctx context.Context) ([]*models.Artist, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM artists ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}

	ids, err := scanIDs(rows)
	if err != nil {
		return nil, err
	}

	artists := make([]*models.Artist, 0, len(ids))
	for _, id := range ids {
		a, err := loadArtist(ctx, r.db, id)
		if err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	return artists, nil
}

// upsertArtist inserts the artist row if missing (filling in an image the stored row lacks) and adds its accepted names.
func upsertArtist(ctx context.Context, q queryer, artist *models.Artist) error {
	query := `
		INSERT INTO artists (id, name, image_url, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET image_url = excluded.image_url
		WHERE artists.image_url = '' AND excluded.image_url != ''
	`

	if _, err := q.ExecContext(ctx, query, artist.ID(), artist.Name(), artist.ImageURL(), artist.CreatedAt()); err != nil {
		return fmt.Errorf("failed to upsert artist %s: %w", artist.ID(), err)
	}

	now := time.Now()
	for _, name := range artist.AcceptedNames() {
		_, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO artist_names (artist_id, name, created_at) VALUES (?, ?, ?)`,
			artist.ID(), name, now,
		)
		if err != nil {
			return fmt.Errorf("failed to add accepted name for artist %s: %w", artist.ID(), err)
		}
	}

	return nil
}

// loadArtist reads an artist row and then its accepted names in insertion order.
func loadArtist(ctx context.Context, q queryer, id string) (*models.Artist, error) {
	var (
		name      string
		imageURL  string
		createdAt time.Time
	)

	err := q.QueryRowContext(ctx, `SELECT name, image_url, created_at FROM artists WHERE id = ?`, id).
		Scan(&name, &imageURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrArtistNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	rows, err := q.QueryContext(ctx, `SELECT name FROM artist_names WHERE artist_id = ? ORDER BY rowid ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query accepted names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan accepted name: %w", err)
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return models.RestoreArtist(id, name, imageURL, names, createdAt), nil
}

// scanIDs drains rows of single-column ids and closes them.
func scanIDs(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}
