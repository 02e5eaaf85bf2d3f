package sgcarmart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const resultsPage = `<html><body>
<div id="listing_101">
  <a class="styles_text_link__wBaHL" href="https://www.sgcarmart.com/used-cars/info/toyota-101">Toyota</a>
  <a class="styles_text_link__wBaHL other" href="https://www.sgcarmart.com/used-cars/info/toyota-101">Toyota again</a>
  <a class="plain" href="https://www.sgcarmart.com/ads/1">ad</a>
</div>
<div id="listing_102">
  <a class="styles_text_link__wBaHL" href="/relative/102">relative</a>
  <a class="styles_text_link__wBaHL" href="https://www.sgcarmart.com/used-cars/info/honda-102">Honda</a>
</div>
<div id="listing_banner">
  <a class="styles_text_link__wBaHL" href="https://www.sgcarmart.com/promo">promo</a>
</div>
<a class="styles_text_link__wBaHL" href="https://www.sgcarmart.com/outside">outside</a>
</body></html>`

func TestExtractListingLinks(t *testing.T) {
	got := ExtractListingLinks(resultsPage)
	assert.Equal(t, []string{
		"https://www.sgcarmart.com/used-cars/info/toyota-101",
		"https://www.sgcarmart.com/used-cars/info/toyota-101",
		"https://www.sgcarmart.com/used-cars/info/honda-102",
	}, got)
}

func TestExtractListingLinksEmptyPage(t *testing.T) {
	assert.Empty(t, ExtractListingLinks(`<html><body><p>No results</p></body></html>`))
}
