package otodom

// Live-page controls, located by chromedp.BySearch (XPath).
const (
	consentButtonXPath = `//button[contains(text(), 'Akceptuję')]`
	searchSubmitXPath  = `//*[@id="search-form-submit"]`
	nextPageXPath      = `//li[@aria-label="Go to next Page"]`
)

// Listing fields, located in the rendered HTML with goquery.
const (
	listingItemCSS = `article[data-cy="listing-item"]`
	priceCSS       = listingItemCSS + ` span[data-sentry-component="Price"]`
	addressCSS     = listingItemCSS + ` p[data-sentry-component="Address"]`
	areaLabelCSS   = listingItemCSS + ` dt`

	// areaLabel is the dt text whose following dd holds the floor area.
	areaLabel = "Powierzchnia"
)
