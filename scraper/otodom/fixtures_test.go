package otodom

import (
	"fmt"
	"strings"
)

func listingHTML(price, area, address string) string {
	return fmt.Sprintf(`
<article data-cy="listing-item">
  <span data-sentry-component="Price">%s</span>
  <p data-sentry-component="Address">%s</p>
  <dl>
    <dt>Liczba pokoi</dt><dd><span>3 pokoje</span></dd>
    <dt>
      Powierzchnia
    </dt><dd><span>%s</span></dd>
  </dl>
</article>`, price, address, area)
}

func listingWithoutArea(price, address string) string {
	return fmt.Sprintf(`
<article data-cy="listing-item">
  <span data-sentry-component="Price">%s</span>
  <p data-sentry-component="Address">%s</p>
  <dl><dt>Liczba pokoi</dt><dd><span>2 pokoje</span></dd></dl>
</article>`, price, address)
}

func pageHTML(listings ...string) string {
	return `<html><body>
<div data-cy="search.listing.promoted"><span data-sentry-component="Price">ignored 1 zł</span></div>
<main>` + strings.Join(listings, "\n") + `</main>
</body></html>`
}
