package scraper

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"nemostore/config"
	"nemostore/models"
	"nemostore/storage"
)

// Orchestrator drives fetch -> upsert for each configured region. Regions run
// sequentially; each page is written and committed before the next page is
// requested, so a crash or a bad page loses at most the page in flight.
type Orchestrator struct {
	cfg     *config.Config
	store   *storage.SQLiteStore
	handler *APIHandler
	limiter *rate.Limiter
}

func NewOrchestrator(cfg *config.Config, store *storage.SQLiteStore, handler *APIHandler) *Orchestrator {
	delay := cfg.FetchDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}
	return &Orchestrator{
		cfg:     cfg,
		store:   store,
		handler: handler,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

// RunAll collects every configured region in order. One region's failure
// never blocks the rest; errors are logged, not returned, and the caller
// exits zero after attempting all regions.
func (o *Orchestrator) RunAll(ctx context.Context) {
	for _, region := range o.cfg.Regions {
		run := o.CollectRegion(ctx, region)
		log.Printf("[%s] finished: status=%s pages=%d written=%d",
			region.Name, run.Status, run.PagesFetched, run.ListingsWritten)
	}
}

// CollectRegion pulls pages 0..MaxPages-1 for one region, upserting every
// record and committing per page. Collection stops early on an empty page
// (normal exhaustion) or on the first transport/parse failure (the region is
// abandoned for this run; committed pages are kept).
func (o *Orchestrator) CollectRegion(ctx context.Context, region *config.RegionConfig) *models.CollectionRun {
	run := &models.CollectionRun{
		ID:        uuid.New(),
		Region:    region.Name,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := o.store.CreateRun(run); err != nil {
		log.Printf("[%s] warning: could not record run: %v", region.Name, err)
	}

	log.Printf("[%s] starting collection (max %d pages)", region.Name, region.MaxPages)

	for page := 0; page < region.MaxPages; page++ {
		if err := o.limiter.Wait(ctx); err != nil {
			run.Status = models.RunStatusFailed
			run.Error = err.Error()
			break
		}

		log.Printf("[%s] fetching page %d", region.Name, page)
		items, err := o.handler.FetchPage(ctx, region, page)
		if err != nil {
			log.Printf("[%s] page %d failed, stopping region: %v", region.Name, page, err)
			run.Status = models.RunStatusFailed
			run.Error = err.Error()
			break
		}
		run.PagesFetched++

		if len(items) == 0 {
			log.Printf("[%s] no more items at page %d", region.Name, page)
			break
		}

		written, err := o.writePage(items, region.Name)
		if err != nil {
			log.Printf("[%s] page %d write failed, stopping region: %v", region.Name, page, err)
			run.Status = models.RunStatusFailed
			run.Error = err.Error()
			break
		}
		run.ListingsWritten += written
		log.Printf("[%s] page %d saved, %d items (total %d)", region.Name, page, written, run.ListingsWritten)
	}

	if run.Status == models.RunStatusRunning {
		run.Status = models.RunStatusCompleted
	}
	now := time.Now()
	run.FinishedAt = &now
	if err := o.store.FinishRun(run); err != nil {
		log.Printf("[%s] warning: could not finalize run: %v", region.Name, err)
	}

	return run
}

// writePage upserts one page of records inside a single transaction.
// Records without an id cannot be keyed and are skipped with a log line.
func (o *Orchestrator) writePage(items []models.RawListing, regionName string) (int, error) {
	tx, err := o.store.Begin()
	if err != nil {
		return 0, err
	}

	written := 0
	for i := range items {
		listing, ok := models.ListingFromRaw(&items[i], regionName)
		if !ok {
			log.Printf("[%s] skipping record without id", regionName)
			continue
		}
		if err := o.store.UpsertListing(tx, listing); err != nil {
			tx.Rollback()
			return 0, err
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return written, nil
}
