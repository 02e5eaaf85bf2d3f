package sgcarmart

import (
	"context"
	"errors"
	"time"

	"carlist-scraper/utils"
)

// NextState describes the pagination control on the current results page.
type NextState int

const (
	NextMissing NextState = iota
	NextDisabled
	NextEnabled
)

func (s NextState) String() string {
	switch s {
	case NextDisabled:
		return "disabled"
	case NextEnabled:
		return "enabled"
	default:
		return "missing"
	}
}

// Session is one browser tab driven through the result pages.
type Session interface {
	Navigate(ctx context.Context, url string) error
	// WaitListings blocks until at least one listing card is present.
	WaitListings(ctx context.Context) error
	HTML(ctx context.Context) (string, error)
	NextControl(ctx context.Context) (NextState, error)
	// MarkFirstListing remembers the current first card so WaitPageChange
	// can tell when it has been replaced.
	MarkFirstListing(ctx context.Context) error
	ClickNext(ctx context.Context) error
	WaitPageChange(ctx context.Context) error
	Close() error
}

// SessionOpener starts a new browser session.
type SessionOpener func(ctx context.Context) (Session, error)

// Collector walks paginated search results and gathers listing URLs.
type Collector struct {
	open        SessionOpener
	waitTimeout time.Duration
	logger      *utils.Logger
}

// NewCollector creates a Collector. Each bounded wait gives up after
// waitTimeout.
func NewCollector(open SessionOpener, waitTimeout time.Duration, logger *utils.Logger) *Collector {
	return &Collector{open: open, waitTimeout: waitTimeout, logger: logger}
}

// Collect loads startURL and follows the next control for at most maxPages
// pages, returning every distinct listing URL in sorted order.
//
// A timed out wait or a page without a next control aborts the crawl; the
// browser session is closed on every path.
func (c *Collector) Collect(ctx context.Context, startURL string, maxPages int) ([]string, error) {
	sess, err := c.open(ctx)
	if err != nil {
		return nil, utils.NewError(utils.KindNetwork, "open browser", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			c.logger.Warn("[collector] Closing browser: %v", cerr)
		}
	}()

	c.logger.Info("[collector] Starting crawl at %s (max %d pages)", startURL, maxPages)
	if err := sess.Navigate(ctx, startURL); err != nil {
		return nil, utils.NewError(utils.KindNetwork, "navigate "+startURL, err)
	}

	links := utils.NewURLSet()
	for page := 1; page <= maxPages; page++ {
		if err := c.wait(ctx, "wait for listings", sess.WaitListings); err != nil {
			return nil, err
		}

		html, err := sess.HTML(ctx)
		if err != nil {
			return nil, utils.NewError(utils.KindNetwork, "read page", err)
		}
		found := ExtractListingLinks(html)
		added := links.AddAll(found)
		c.logger.Info("[collector] Page %d: %d links (%d new, %d total)", page, len(found), added, links.Size())

		state, err := sess.NextControl(ctx)
		if err != nil {
			return nil, utils.NewError(utils.KindNetwork, "inspect next control", err)
		}
		switch state {
		case NextMissing:
			return nil, utils.NewError(utils.KindParsing, "find next control", utils.ErrNextControlMissing)
		case NextDisabled:
			c.logger.Info("[collector] Next control disabled on page %d, last page reached", page)
			return links.Sorted(), nil
		}

		if err := sess.MarkFirstListing(ctx); err != nil {
			return nil, utils.NewError(utils.KindNetwork, "mark first listing", err)
		}
		if err := sess.ClickNext(ctx); err != nil {
			return nil, utils.NewError(utils.KindNetwork, "click next", err)
		}
		if err := c.wait(ctx, "wait for page change", sess.WaitPageChange); err != nil {
			return nil, err
		}
	}
	c.logger.Info("[collector] Page budget of %d reached", maxPages)

	return links.Sorted(), nil
}

// wait runs fn under the collector's wait timeout and reports expiry as
// ErrWaitTimeout.
func (c *Collector) wait(ctx context.Context, op string, fn func(context.Context) error) error {
	waitCtx, cancel := context.WithTimeout(ctx, c.waitTimeout)
	defer cancel()

	err := fn(waitCtx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || waitCtx.Err() != nil {
		return utils.NewError(utils.KindTimeout, op, utils.ErrWaitTimeout)
	}
	return utils.NewError(utils.KindNetwork, op, err)
}
