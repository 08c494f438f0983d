package api

import (
	"github.com/lysyi3m/wire-comb/app/database"
	"github.com/lysyi3m/wire-comb/app/profile"
	"github.com/lysyi3m/wire-comb/app/tasks"
)

// InventoryOpener opens the inventory for a single lookup.
type InventoryOpener func() (database.InventoryStore, func() error, error)

type Handler struct {
	profiles  *profile.ProfileCache
	runner    tasks.BatchRunner
	inventory InventoryOpener
}
