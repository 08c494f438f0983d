package database

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

type DB struct {
	*sqlx.DB
	path string
}

// Open opens the sqlite inventory at path and applies pending migrations.
// A single connection serves the whole batch.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("database path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

	sqlDB, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{DB: sqlDB, path: cleanPath}

	if _, _, err := RunMigrations(db); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Path() string {
	return db.path
}
