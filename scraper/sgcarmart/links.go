package sgcarmart

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	listingSelector = `div[id^='listing_']`
	nextSelector    = `#desktopPaginationContainer button[class*="right_control"]`
	linkSelector    = `a.styles_text_link__wBaHL`
)

var listingIDRegexp = regexp.MustCompile(`^listing_\d+$`)

// ExtractListingLinks returns the secure listing URLs found in the result
// cards of one results page, in document order. Duplicates are kept; the
// collector merges them.
func ExtractListingLinks(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("div[id]").Each(func(_ int, card *goquery.Selection) {
		id, _ := card.Attr("id")
		if !listingIDRegexp.MatchString(id) {
			return
		}
		card.Find(linkSelector).Each(func(_ int, a *goquery.Selection) {
			href, ok := a.Attr("href")
			if ok && strings.HasPrefix(href, "https") {
				links = append(links, href)
			}
		})
	})
	return links
}
