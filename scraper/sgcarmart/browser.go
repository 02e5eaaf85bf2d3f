package sgcarmart

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserOptions configures the Chrome instance used for crawling.
type BrowserOptions struct {
	Headless  bool
	ChromeBin string
}

type chromeSession struct {
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// ChromeOpener returns a SessionOpener that launches a local Chrome.
func ChromeOpener(opts BrowserOptions) SessionOpener {
	return func(ctx context.Context) (Session, error) {
		return openChrome(ctx, opts)
	}
}

func openChrome(ctx context.Context, o BrowserOptions) (*chromeSession, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", o.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if bin := findChromeBinary(o.ChromeBin); bin != "" {
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// starts the browser so launch failures surface here
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("chromedp start: %w", err)
	}

	return &chromeSession{tabCtx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}, nil
}

// run executes actions on the tab, bounded by ctx's deadline and
// cancellation.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.tabCtx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if errors.Is(err, chromedp.ErrPollingTimeout) {
		return context.DeadlineExceeded
	}
	return err
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return s.run(ctx, chromedp.Navigate(url))
}

func (s *chromeSession) WaitListings(ctx context.Context) error {
	return s.run(ctx, chromedp.WaitReady(listingSelector, chromedp.ByQuery))
}

func (s *chromeSession) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (s *chromeSession) NextControl(ctx context.Context) (NextState, error) {
	var state string
	err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(function() {
			var btn = document.querySelector(%q);
			if (!btn) return "missing";
			var cls = btn.getAttribute("class") || "";
			if (cls.indexOf("disabled") !== -1 || btn.disabled) return "disabled";
			return "enabled";
		})()
	`, nextSelector), &state))
	if err != nil {
		return NextMissing, err
	}
	switch state {
	case "enabled":
		return NextEnabled, nil
	case "disabled":
		return NextDisabled, nil
	default:
		return NextMissing, nil
	}
}

func (s *chromeSession) MarkFirstListing(ctx context.Context) error {
	var marked bool
	err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(function() {
			window.__carlistFirstListing = document.querySelector(%q);
			return !!window.__carlistFirstListing;
		})()
	`, listingSelector), &marked))
	if err != nil {
		return err
	}
	if !marked {
		return errors.New("no listing element to mark")
	}
	return nil
}

func (s *chromeSession) ClickNext(ctx context.Context) error {
	var clicked bool
	err := s.run(ctx, chromedp.Evaluate(fmt.Sprintf(`
		(function() {
			var btn = document.querySelector(%q);
			if (!btn) return false;
			btn.click();
			return true;
		})()
	`, nextSelector), &clicked))
	if err != nil {
		return err
	}
	if !clicked {
		return errors.New("next control disappeared before click")
	}
	return nil
}

// WaitPageChange polls until the marked listing is detached from the
// document, i.e. the results were re-rendered.
func (s *chromeSession) WaitPageChange(ctx context.Context) error {
	timeout := 30 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	var stale bool
	return s.run(ctx, chromedp.Poll(
		`!window.__carlistFirstListing || !window.__carlistFirstListing.isConnected`,
		&stale,
		chromedp.WithPollingInterval(200*time.Millisecond),
		chromedp.WithPollingTimeout(timeout),
	))
}

func (s *chromeSession) Close() error {
	s.cancelTab()
	s.cancelAlloc()
	return nil
}

// findChromeBinary locates Chrome/Chromium binary.
func findChromeBinary(configured string) string {
	if configured != "" {
		return configured
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
