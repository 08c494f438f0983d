package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/wire-comb/app/database"
	"github.com/lysyi3m/wire-comb/app/profile"
	"github.com/lysyi3m/wire-comb/app/tasks"
)

func NewHandler(profiles *profile.ProfileCache, runner tasks.BatchRunner, inventory InventoryOpener) *Handler {
	return &Handler{
		profiles:  profiles,
		runner:    runner,
		inventory: inventory,
	}
}

// SQLiteInventory opens the inventory file at dbPath for each request.
func SQLiteInventory(dbPath string) InventoryOpener {
	return func() (database.InventoryStore, func() error, error) {
		db, err := database.Open(dbPath)
		if err != nil {
			return nil, nil, err
		}
		return database.NewInventoryRepository(db), db.Close, nil
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"profiles":  h.profiles.Count(),
	}

	if store, closeFn, err := h.inventory(); err == nil {
		if count, err := store.Count(); err == nil {
			health["inventory"] = count
		}
		if err := closeFn(); err != nil {
			slog.Warn("Failed to close inventory", "error", err)
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIRunProfile(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing profile name parameter"})
		return
	}

	if _, err := h.profiles.Get(name); err != nil {
		slog.Error("Profile not found", "profile", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "Profile not found"})
		return
	}

	report, err := h.runner.Run(c.Request.Context(), name, c.Query("page"))
	if err != nil {
		slog.Error("Ingestion run failed", "profile", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Ingestion run failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":             report.Attempted,
		"delivered":         report.Delivered,
		"already_delivered": report.AlreadyDelivered,
		"failed":            report.Failed,
		"next_page":         report.NextPage,
	})
}

func (h *Handler) APIGetInventory(c *gin.Context) {
	sourceID := c.Param("source_id")
	if sourceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source id parameter"})
		return
	}

	store, closeFn, err := h.inventory()
	if err != nil {
		slog.Error("Database error", "operation", "open_inventory", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	defer func() {
		if err := closeFn(); err != nil {
			slog.Warn("Failed to close inventory", "error", err)
		}
	}()

	record, err := store.GetBySourceID(sourceID)
	if err != nil {
		slog.Error("Database error", "operation", "get_inventory", "source_id", sourceID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if record == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not found in inventory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"source_id":   record.SourceID,
		"content_id":  record.ContentID,
		"url":         record.URL,
		"type":        record.Type,
		"fingerprint": record.Fingerprint,
		"updated_at":  record.UpdatedAt.Format(time.RFC3339),
	})
}
