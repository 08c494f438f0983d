package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/wire-comb/app/ans"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// DraftRevision replaces the draft revision of an existing story.
type DraftRevision struct {
	DocumentID string        `json:"document_id"`
	ANS        *ans.Document `json:"ans"`
	Type       string        `json:"type"`
	ID         string        `json:"id"`
}

// Fields of a remote photo that may be overwritten on update. The URLs
// backing the stored binary are left alone.
var photoPatchFields = []string{
	"caption",
	"subtitle",
	"additional_properties.expiration_date",
	"additional_properties.origin_url",
	"additional_properties.sha1",
}

// sendStory creates the story, or revises its draft when the id is taken.
func (c *Coordinator) sendStory(ctx context.Context, doc *ans.Document) (bool, error) {
	resp, err := c.downstream.CreateStory(ctx, doc)
	if err != nil {
		return false, deliveryError("create story", resp, err)
	}
	if resp.OK() {
		return false, nil
	}
	if !resp.IdentifierInUse() {
		return false, deliveryError("create story", resp, nil)
	}

	slog.Debug("Story exists, revising draft", "content_id", doc.ID)

	resp, err = c.downstream.GetStory(ctx, doc.ID)
	if err := deliveryError("get story", resp, err); err != nil {
		return true, err
	}

	revisionID := gjson.GetBytes(resp.Body, "draft_revision_id").String()
	if revisionID == "" {
		return true, fmt.Errorf("%w: story %s has no draft revision", ErrDeliveryFailed, doc.ID)
	}

	resp, err = c.downstream.UpdateDraftRevision(ctx, doc.ID, DraftRevision{
		DocumentID: doc.ID,
		ANS:        doc,
		Type:       "DRAFT",
		ID:         revisionID,
	})
	return true, deliveryError("update draft revision", resp, err)
}

// sendSideDocuments schedules deletion, then routes the story into its section.
func (c *Coordinator) sendSideDocuments(ctx context.Context, contentID string, side *ans.SideDocuments) error {
	resp, err := c.downstream.ScheduleDelete(ctx, side.DeleteOperation)
	if err := deliveryError("schedule delete", resp, err); err != nil {
		return err
	}

	resp, err = c.downstream.UpdateCirculation(ctx, contentID, side.Circulation.WebsiteID, side.Circulation)
	return deliveryError("update circulation", resp, err)
}

// sendPhoto creates the photo, or patches the remote one when the id is taken.
func (c *Coordinator) sendPhoto(ctx context.Context, doc *ans.Document) (bool, error) {
	resp, err := c.downstream.CreatePhoto(ctx, doc.ID, doc)
	if err != nil {
		return false, deliveryError("create photo", resp, err)
	}
	if resp.OK() {
		return false, nil
	}
	if !resp.IdentifierInUse() {
		return false, deliveryError("create photo", resp, nil)
	}

	slog.Debug("Photo exists, updating", "content_id", doc.ID)

	resp, err = c.downstream.GetPhoto(ctx, doc.ID)
	if err := deliveryError("get photo", resp, err); err != nil {
		return true, err
	}

	patched, err := patchPhoto(resp.Body, doc)
	if err != nil {
		return true, fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}

	resp, err = c.downstream.UpdatePhoto(ctx, doc.ID, patched)
	return true, deliveryError("update photo", resp, err)
}

func patchPhoto(remote []byte, doc *ans.Document) ([]byte, error) {
	if !gjson.ValidBytes(remote) {
		return nil, fmt.Errorf("remote photo %s is not valid JSON", doc.ID)
	}

	values := map[string]string{
		"caption":                               doc.Caption,
		"subtitle":                              doc.Subtitle,
		"additional_properties.expiration_date": doc.AdditionalProperties.ExpirationDate,
		"additional_properties.origin_url":      doc.AdditionalProperties.OriginURL,
		"additional_properties.sha1":            doc.AdditionalProperties.SHA1,
	}

	patched := remote
	for _, path := range photoPatchFields {
		var err error
		patched, err = sjson.SetBytes(patched, path, values[path])
		if err != nil {
			return nil, fmt.Errorf("failed to patch %s: %w", path, err)
		}
	}
	return patched, nil
}
