package database

import (
	"time"
)

// InventoryRecord is the last successfully delivered version of a source item.
type InventoryRecord struct {
	SourceID    string
	ContentID   string
	URL         string
	Type        string
	Fingerprint string
	UpdatedAt   time.Time
}

// FeedCursor is where the next run of a profile resumes reading the feed.
type FeedCursor struct {
	Profile   string
	NextPage  string
	Sequence  string
	UpdatedAt time.Time
}

type inventoryRow struct {
	SourceID    string `db:"source_id"`
	ContentID   string `db:"content_id"`
	URL         string `db:"url"`
	Type        string `db:"type"`
	Fingerprint string `db:"fingerprint"`
	UpdatedAt   string `db:"updated_at"`
}

func (r inventoryRow) record() InventoryRecord {
	updatedAt, _ := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return InventoryRecord{
		SourceID:    r.SourceID,
		ContentID:   r.ContentID,
		URL:         r.URL,
		Type:        r.Type,
		Fingerprint: r.Fingerprint,
		UpdatedAt:   updatedAt,
	}
}

type cursorRow struct {
	Profile   string `db:"profile"`
	NextPage  string `db:"next_page"`
	Sequence  string `db:"sequence"`
	UpdatedAt string `db:"updated_at"`
}

func (r cursorRow) cursor() FeedCursor {
	updatedAt, _ := time.Parse(time.RFC3339Nano, r.UpdatedAt)
	return FeedCursor{
		Profile:   r.Profile,
		NextPage:  r.NextPage,
		Sequence:  r.Sequence,
		UpdatedAt: updatedAt,
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339Nano)
}
