package sgcarmart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"carlist-scraper/models"
	"carlist-scraper/utils"
)

// payloadMarkers must all appear in the script block that carries the
// listing data.
var payloadMarkers = []string{"success", "coe", "depreciation"}

var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"Connection":      "keep-alive",
}

// Extractor fetches single listing pages and recovers their attributes.
type Extractor struct {
	client *resty.Client
	logger *utils.Logger
}

// NewExtractor creates an Extractor whose requests time out after timeout.
func NewExtractor(timeout time.Duration, logger *utils.Logger) *Extractor {
	client := resty.New().
		SetTimeout(timeout).
		SetHeaders(browserHeaders)
	return &Extractor{client: client, logger: logger}
}

// Extract fetches url and parses its embedded payload. Fields that cannot
// be located are simply absent from the record; only transport failures
// and non-2xx responses are errors.
func (e *Extractor) Extract(ctx context.Context, url string) (models.CarRecord, error) {
	html, err := e.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	payload, ok := FindPayload(html)
	if !ok {
		e.logger.Debug("[extractor] No payload script found on %s", url)
	}
	rec := recordFrom(url, payload)

	e.logger.Debug("[extractor] %s: %d/%d fields", url, rec.Populated(), len(models.CanonicalFields))
	return rec, nil
}

// Fetch returns the body of url, failing on any non-2xx status.
func (e *Extractor) Fetch(ctx context.Context, url string) (string, error) {
	resp, err := e.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", utils.NewError(utils.KindNetwork, "fetch "+url, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		return "", utils.NewError(utils.KindNetwork, "fetch "+url,
			fmt.Errorf("unexpected status code: %d", code))
	}
	return resp.String(), nil
}

// FindPayload returns the text of the first script element containing all
// payload markers.
func FindPayload(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	var payload string
	found := false
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		for _, marker := range payloadMarkers {
			if !strings.Contains(text, marker) {
				return true
			}
		}
		payload, found = text, true
		return false
	})
	return payload, found
}

// ParseListing runs the full extraction over an already fetched page.
func ParseListing(url, html string) models.CarRecord {
	payload, _ := FindPayload(html)
	return recordFrom(url, payload)
}

func recordFrom(url, payload string) models.CarRecord {
	rec := ParsePayload(NormalizePayload(payload))
	rec.Set(models.FieldURL, url)
	return rec
}
