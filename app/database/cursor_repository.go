package database

import (
	"database/sql"
	"errors"
	"fmt"
)

var _ CursorStore = (*CursorRepository)(nil)

// CursorRepository stores where each profile resumes reading its feed
type CursorRepository struct {
	db *DB
}

func NewCursorRepository(db *DB) *CursorRepository {
	return &CursorRepository{db: db}
}

// GetCursor returns nil when the profile has not completed a run yet
func (r *CursorRepository) GetCursor(profile string) (*FeedCursor, error) {
	var row cursorRow
	err := r.db.Get(&row, `
		SELECT profile, next_page, sequence, updated_at
		FROM feed_cursor
		WHERE profile = ?
	`, profile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed cursor: %w", err)
	}

	cursor := row.cursor()
	return &cursor, nil
}

func (r *CursorRepository) SaveCursor(cursor FeedCursor) error {
	if cursor.Profile == "" {
		return fmt.Errorf("profile is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO feed_cursor (profile, next_page, sequence, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (profile) DO UPDATE SET
			next_page = excluded.next_page,
			sequence = excluded.sequence,
			updated_at = excluded.updated_at
	`, cursor.Profile, cursor.NextPage, cursor.Sequence, formatTime(cursor.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save feed cursor: %w", err)
	}

	return nil
}
