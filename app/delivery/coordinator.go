package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lysyi3m/wire-comb/app/ans"
	"github.com/lysyi3m/wire-comb/app/arc"
	"github.com/lysyi3m/wire-comb/app/content"
	"github.com/lysyi3m/wire-comb/app/database"
	"github.com/lysyi3m/wire-comb/app/metrics"
	"github.com/lysyi3m/wire-comb/app/wire"
)

// Downstream is the set of content API calls a delivery needs.
type Downstream interface {
	CreateStory(ctx context.Context, doc any) (arc.Response, error)
	GetStory(ctx context.Context, id string) (arc.Response, error)
	UpdateDraftRevision(ctx context.Context, id string, revision any) (arc.Response, error)
	ScheduleDelete(ctx context.Context, operation any) (arc.Response, error)
	UpdateCirculation(ctx context.Context, id, website string, circulation any) (arc.Response, error)
	CreatePhoto(ctx context.Context, id string, doc any) (arc.Response, error)
	GetPhoto(ctx context.Context, id string) (arc.Response, error)
	UpdatePhoto(ctx context.Context, id string, body []byte) (arc.Response, error)
}

type Options struct {
	Profile      string
	DBPath       string
	MaxPages     int
	Site         ans.Site
	StoryLimiter Limiter
	PhotoLimiter Limiter
}

// Coordinator runs batches for one profile: it reads feed pages, converts
// each item and delivers it, one item at a time in feed order.
type Coordinator struct {
	source       wire.Source
	downstream   Downstream
	profile      string
	dbPath       string
	maxPages     int
	site         ans.Site
	storyLimiter Limiter
	photoLimiter Limiter
}

func NewCoordinator(source wire.Source, downstream Downstream, opts Options) *Coordinator {
	c := &Coordinator{
		source:       source,
		downstream:   downstream,
		profile:      opts.Profile,
		dbPath:       opts.DBPath,
		maxPages:     max(opts.MaxPages, 1),
		site:         opts.Site,
		storyLimiter: opts.StoryLimiter,
		photoLimiter: opts.PhotoLimiter,
	}
	if c.storyLimiter == nil {
		c.storyLimiter = Unlimited()
	}
	if c.photoLimiter == nil {
		c.photoLimiter = Unlimited()
	}
	return c
}

// Run delivers every item of up to MaxPages feed pages. Reading starts at
// startPage when given, else where the previous run stopped. Item failures
// are recorded in the report; only inventory errors abort the run.
func (c *Coordinator) Run(ctx context.Context, startPage string) (report *Report, err error) {
	// A started batch always works through its whole item list, so rate
	// limit waits block instead of failing on the caller's deadline.
	ctx = context.WithoutCancel(ctx)

	started := time.Now()
	defer func() {
		metrics.RunDuration.WithLabelValues(c.profile).Observe(time.Since(started).Seconds())
	}()

	db, err := database.Open(c.dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close inventory: %w", closeErr)
		}
	}()

	inventory := database.NewInventoryRepository(db)
	cursors := database.NewCursorRepository(db)

	pageURL := startPage
	if pageURL == "" {
		cursor, err := cursors.GetCursor(c.profile)
		if err != nil {
			return nil, err
		}
		if cursor != nil {
			pageURL = cursor.NextPage
			slog.Info("Resuming feed", "profile", c.profile, "sequence", cursor.Sequence)
		}
	}

	report = &Report{Profile: c.profile}

	for report.Pages < c.maxPages {
		page := c.source.FetchPage(ctx, pageURL)
		report.Pages++

		c.deliverItems(ctx, inventory, page.Items, report)

		if page.NextPage == "" {
			break
		}
		report.NextPage = page.NextPage
		report.Sequence = page.Sequence
		pageURL = page.NextPage
	}

	if report.NextPage != "" {
		err := cursors.SaveCursor(database.FeedCursor{
			Profile:  c.profile,
			NextPage: report.NextPage,
			Sequence: report.Sequence,
		})
		if err != nil {
			return report, err
		}
	}

	slog.Info("Ingestion run completed",
		"profile", c.profile,
		"pages", report.Pages,
		"attempted", report.Attempted,
		"delivered", report.Delivered,
		"already_delivered", report.AlreadyDelivered,
		"failed", report.Failed,
		"duration", time.Since(started))

	return report, nil
}

func (c *Coordinator) deliverItems(ctx context.Context, inventory database.InventoryStore, items []wire.Item, report *Report) {
	for _, item := range items {
		report.Attempted++
		c.record(report, c.deliverItem(ctx, inventory, item, report))
	}
}

func (c *Coordinator) deliverItem(ctx context.Context, inventory database.InventoryStore, item wire.Item, report *Report) Outcome {
	switch item.Kind {
	case wire.KindStory:
		return c.deliverStory(ctx, inventory, item, report)
	case wire.KindPicture:
		return c.deliverPicture(ctx, inventory, item)
	default:
		return newOutcome(item, "", false, fmt.Errorf("%w: %q", ErrUnsupportedKind, item.Type))
	}
}

// record logs an outcome once and adds it to the report.
func (c *Coordinator) record(report *Report, outcome Outcome) {
	report.add(outcome)
	metrics.ItemOutcomes.WithLabelValues(c.profile, string(outcome.Kind), string(outcome.Status)).Inc()

	attrs := []any{
		"profile", c.profile,
		"source_id", outcome.SourceID,
		"content_id", outcome.ContentID,
		"kind", outcome.Kind,
		"status", outcome.Status,
	}

	switch outcome.Status {
	case StatusDelivered:
		slog.Info("Wire item delivered", append(attrs, "updated", outcome.Updated)...)
	case StatusAlreadyDelivered:
		slog.Info("Wire item unchanged, skipped", attrs...)
	case StatusUnsupported, StatusIncompleteItem:
		slog.Warn("Wire item skipped", append(attrs, "reason", outcome.Reason())...)
	default:
		slog.Error("Wire item failed", append(attrs, "error", outcome.Err)...)
	}
}

func (c *Coordinator) deliverStory(ctx context.Context, inventory database.InventoryStore, item wire.Item, report *Report) Outcome {
	body, err := c.storyBody(ctx, item)
	if err != nil {
		return newOutcome(item, "", false, err)
	}

	converter := ans.NewStoryConverter(item, body, c.site)
	contentID := converter.ContentID()

	doc, err := converter.Convert()
	if err != nil {
		return newOutcome(item, contentID, false, err)
	}
	side, err := converter.SideDocuments()
	if err != nil {
		return newOutcome(item, contentID, false, err)
	}
	if !side.Complete() {
		return newOutcome(item, contentID, false, fmt.Errorf("%w: story needs circulation and delete operation", ErrIncompleteItem))
	}

	if err := c.checkInventory(inventory, doc); err != nil {
		return newOutcome(item, contentID, false, err)
	}

	if missing := c.deliverAssociations(ctx, inventory, item, converter, report); len(missing) > 0 {
		doc, err = converter.WithoutAssociations(missing...).Convert()
		if err != nil {
			return newOutcome(item, contentID, false, err)
		}
	}

	if err := c.storyLimiter.Wait(ctx); err != nil {
		return newOutcome(item, contentID, false, fmt.Errorf("%w: %w", ErrDeliveryFailed, err))
	}

	updated, err := c.sendStory(ctx, doc)
	if err != nil {
		return newOutcome(item, contentID, updated, err)
	}

	if err := c.sendSideDocuments(ctx, doc.ID, side); err != nil {
		return newOutcome(item, contentID, updated, err)
	}

	c.commit(inventory, item, doc)

	return newOutcome(item, contentID, updated, nil)
}

func (c *Coordinator) storyBody(ctx context.Context, item wire.Item) (*content.Body, error) {
	data := []byte(item.Body)
	if len(data) == 0 {
		fetched, err := c.source.FetchContent(ctx, item.DownloadURL)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch story body: %w", ErrIncompleteItem, err)
		}
		data = fetched
	}

	body, err := content.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIncompleteItem, err)
	}
	return body, nil
}

// deliverAssociations delivers the pictures a story references before the
// story itself. It returns the source ids of pictures that are not in place
// downstream, so the story can leave them out of its related content.
func (c *Coordinator) deliverAssociations(ctx context.Context, inventory database.InventoryStore, item wire.Item, converter *ans.StoryConverter, report *Report) []string {
	pending := make(map[string]bool)
	for _, uri := range converter.PhotoAssociationURLs() {
		pending[uri] = true
	}

	var missing []string
	for _, assoc := range item.Associations {
		if !assoc.IsPicture() {
			slog.Debug("Association is not a picture, skipped",
				"story_source_id", item.SourceID,
				"source_id", assoc.SourceID,
				"type", assoc.Type)
			continue
		}

		picture := assoc.Item
		if picture == nil {
			if !pending[assoc.URI] {
				missing = append(missing, assoc.SourceID)
				continue
			}
			fetched, ok := c.source.FetchItem(ctx, assoc.URI)
			if !ok {
				slog.Warn("Association not available",
					"story_source_id", item.SourceID,
					"source_id", assoc.SourceID,
					"uri", assoc.URI)
				missing = append(missing, assoc.SourceID)
				continue
			}
			picture = fetched
		}

		if picture.Kind != wire.KindPicture {
			slog.Warn("Association is not a picture, skipped",
				"story_source_id", item.SourceID,
				"source_id", picture.SourceID,
				"type", picture.Type)
			missing = append(missing, assoc.SourceID)
			continue
		}

		outcome := c.deliverPicture(ctx, inventory, *picture)
		c.record(report, outcome)

		if outcome.Status != StatusDelivered && outcome.Status != StatusAlreadyDelivered {
			missing = append(missing, assoc.SourceID)
		}
	}

	return missing
}

func (c *Coordinator) deliverPicture(ctx context.Context, inventory database.InventoryStore, item wire.Item) Outcome {
	converter := ans.NewPictureConverter(item, c.site)
	contentID := converter.ContentID()

	doc, err := converter.Convert()
	if err != nil {
		return newOutcome(item, contentID, false, err)
	}

	if err := c.checkInventory(inventory, doc); err != nil {
		return newOutcome(item, contentID, false, err)
	}

	if err := c.photoLimiter.Wait(ctx); err != nil {
		return newOutcome(item, contentID, false, fmt.Errorf("%w: %w", ErrDeliveryFailed, err))
	}

	updated, err := c.sendPhoto(ctx, doc)
	if err != nil {
		return newOutcome(item, contentID, updated, err)
	}

	c.commit(inventory, item, doc)

	return newOutcome(item, contentID, updated, nil)
}

func (c *Coordinator) checkInventory(inventory database.InventoryStore, doc *ans.Document) error {
	exists, err := inventory.ExistsByFingerprint(doc.Fingerprint())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	if exists {
		return fmt.Errorf("%w: fingerprint %s", ErrAlreadyDelivered, doc.Fingerprint())
	}
	return nil
}

// commit records a completed delivery. A failure here is logged only: the
// remote documents are already in place.
func (c *Coordinator) commit(inventory database.InventoryStore, item wire.Item, doc *ans.Document) {
	err := inventory.Upsert(database.InventoryRecord{
		SourceID:    item.SourceID,
		ContentID:   doc.ID,
		URL:         item.URI,
		Type:        doc.Type,
		Fingerprint: doc.Fingerprint(),
		UpdatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("Failed to record delivered item",
			"source_id", item.SourceID,
			"content_id", doc.ID,
			"error", err)
	}
}

func deliveryError(step string, resp arc.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, step, err)
	}
	if respErr := resp.Err(); respErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeliveryFailed, step, respErr)
	}
	return nil
}
