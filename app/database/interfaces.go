package database

type InventoryStore interface {
	ExistsByFingerprint(fingerprint string) (bool, error)
	Upsert(record InventoryRecord) error
	GetBySourceID(sourceID string) (*InventoryRecord, error)
	Count() (int, error)
}

type CursorStore interface {
	GetCursor(profile string) (*FeedCursor, error)
	SaveCursor(cursor FeedCursor) error
}
