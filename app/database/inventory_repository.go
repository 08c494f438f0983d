package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

var _ InventoryStore = (*InventoryRepository)(nil)

// InventoryRepository handles database operations for delivered items
type InventoryRepository struct {
	db *DB
}

// NewInventoryRepository creates a new inventory repository
func NewInventoryRepository(db *DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// ExistsByFingerprint reports whether an item with this fingerprint was delivered before
func (r *InventoryRepository) ExistsByFingerprint(fingerprint string) (bool, error) {
	var exists bool
	err := r.db.Get(&exists, `SELECT EXISTS(SELECT 1 FROM inventory WHERE fingerprint = ?)`, fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to check fingerprint: %w", err)
	}
	return exists, nil
}

// Upsert records a delivered item. A row with the same source id is replaced;
// when the content id already belongs to another row, the mutable fields of
// the row keyed by source id are updated instead.
func (r *InventoryRepository) Upsert(record InventoryRecord) error {
	if record.SourceID == "" || record.ContentID == "" {
		return fmt.Errorf("source id and content id are required")
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updatedAt := formatTime(record.UpdatedAt)

	_, err = tx.Exec(`
		INSERT INTO inventory (source_id, content_id, url, type, fingerprint, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, record.SourceID, record.ContentID, record.URL, record.Type, record.Fingerprint, updatedAt)

	if err != nil {
		if !isUniqueViolation(err) {
			return fmt.Errorf("failed to insert inventory record: %w", err)
		}

		_, err = tx.Exec(`
			UPDATE inventory
			SET url = ?, fingerprint = ?, updated_at = ?
			WHERE source_id = ?
		`, record.URL, record.Fingerprint, updatedAt, record.SourceID)
		if err != nil {
			return fmt.Errorf("failed to update inventory record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit inventory record: %w", err)
	}

	return nil
}

// GetBySourceID returns the inventory row for a source item, or nil if none exists
func (r *InventoryRepository) GetBySourceID(sourceID string) (*InventoryRecord, error) {
	var row inventoryRow
	err := r.db.Get(&row, `
		SELECT source_id, content_id, url, type, fingerprint, updated_at
		FROM inventory
		WHERE source_id = ?
	`, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inventory record: %w", err)
	}

	record := row.record()
	return &record, nil
}

func (r *InventoryRepository) Count() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM inventory`); err != nil {
		return 0, fmt.Errorf("failed to count inventory records: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
