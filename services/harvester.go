package services

import (
	"context"
	"fmt"
	"strings"

	"carlist-scraper/models"
	"carlist-scraper/storage"
	"carlist-scraper/utils"
)

// LinkCollector gathers listing URLs from a paginated results page.
type LinkCollector interface {
	Collect(ctx context.Context, startURL string, maxPages int) ([]string, error)
}

// ListingExtractor turns one listing URL into a record.
type ListingExtractor interface {
	Extract(ctx context.Context, url string) (models.CarRecord, error)
}

// HarvestSummary counts what happened to each collected link.
type HarvestSummary struct {
	Links     int
	Complete  int
	Partial   int
	Failed    int
	TablePath string
}

// Harvester drives collection and extraction and appends each record to
// the store as soon as it is accepted.
type Harvester struct {
	collector LinkCollector
	extractor ListingExtractor
	store     storage.RecordAppender
	retry     *utils.RetryConfig
	logger    *utils.Logger
}

// NewHarvester wires a Harvester. retry bounds the attempts made per
// listing until a complete record is obtained.
func NewHarvester(c LinkCollector, e ListingExtractor, store storage.RecordAppender, retry *utils.RetryConfig, logger *utils.Logger) *Harvester {
	return &Harvester{collector: c, extractor: e, store: store, retry: retry, logger: logger}
}

// Run collects links starting at startURL and harvests every one of them.
func (h *Harvester) Run(ctx context.Context, startURL string, maxPages int) (*HarvestSummary, error) {
	links, err := h.collector.Collect(ctx, startURL, maxPages)
	if err != nil {
		return nil, fmt.Errorf("collect links: %w", err)
	}
	h.logger.Info("[harvester] Collected %d listing links", len(links))
	return h.Harvest(ctx, links)
}

// Harvest extracts each URL in order. A listing that stays incomplete after
// the retry budget is kept as is; one that never produced a record is
// skipped.
func (h *Harvester) Harvest(ctx context.Context, urls []string) (*HarvestSummary, error) {
	summary := &HarvestSummary{Links: len(urls)}

	for i, url := range urls {
		h.logger.Info("[harvester] Processing listing %d/%d: %s", i+1, len(urls), url)

		rec, err := h.extractWithRetry(ctx, url)
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}

		switch {
		case rec == nil:
			summary.Failed++
			h.logger.Warn("[harvester] Giving up on %s: %v", url, err)
			continue
		case err != nil:
			summary.Partial++
			h.logger.Warn("[harvester] %s could not be extracted properly; keeping %d/%d fields (missing: %s)",
				url, rec.Populated(), len(models.CanonicalFields), strings.Join(rec.Missing(), ", "))
		default:
			summary.Complete++
		}

		path, err := h.store.Append(rec)
		if err != nil {
			return summary, fmt.Errorf("append %s: %w", url, err)
		}
		summary.TablePath = path
	}

	h.logger.Info("[harvester] Done: %d complete, %d partial, %d failed of %d",
		summary.Complete, summary.Partial, summary.Failed, summary.Links)
	return summary, nil
}

// extractWithRetry returns the last record obtained for url together with
// the final error, if any. A nil record means every attempt failed.
func (h *Harvester) extractWithRetry(ctx context.Context, url string) (models.CarRecord, error) {
	var last models.CarRecord
	err := h.retry.Do(ctx, "extract "+url, func(attempt int) error {
		rec, err := h.extractor.Extract(ctx, url)
		if err != nil {
			return err
		}
		last = rec
		if !rec.Complete() {
			return fmt.Errorf("%w: %d/%d fields", utils.ErrIncomplete, rec.Populated(), len(models.CanonicalFields))
		}
		return nil
	})
	return last, err
}
