package otodom

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"otodom-scraper/models"
	"otodom-scraper/services"
	"otodom-scraper/utils"
)

// ErrMissingElement marks a triple where one of the paired elements has no text.
var ErrMissingElement = errors.New("listing element missing")

// PageSource yields the rendered HTML of the current result page.
type PageSource interface {
	HTML(ctx context.Context) (string, error)
}

// Triple is one same-position (price, area, address) combination.
type Triple struct {
	Price   string
	Area    string
	Address string
}

// PageResult is what one result page produced.
type PageResult struct {
	Records   []models.ListingRecord
	Prices    int
	Areas     int
	Addresses int
	Dropped   int
}

// PairByIndex combines the i-th element of each collection and stops at the
// shortest one. A listing that lacks one field therefore shifts every later
// pairing; the excess elements of the longer collections are discarded.
func PairByIndex(prices, areas, addresses []string) []Triple {
	n := min(len(prices), len(areas), len(addresses))
	triples := make([]Triple, n)
	for i := 0; i < n; i++ {
		triples[i] = Triple{Price: prices[i], Area: areas[i], Address: addresses[i]}
	}
	return triples
}

// Extractor turns a result page into listing records.
type Extractor struct {
	logger *utils.Logger
}

// NewExtractor creates an Extractor with the given logger.
func NewExtractor(logger *utils.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// ExtractPage reads the page HTML and extracts its listings.
func (e *Extractor) ExtractPage(ctx context.Context, page PageSource) (*PageResult, error) {
	html, err := page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page html: %w", err)
	}
	return e.ExtractDocument(doc), nil
}

// ExtractDocument extracts listings from an already parsed document. Each
// triple is normalised independently; a failing one is logged and dropped.
func (e *Extractor) ExtractDocument(doc *goquery.Document) *PageResult {
	prices := texts(doc.Find(priceCSS))
	areas := areaTexts(doc)
	addresses := texts(doc.Find(addressCSS))

	res := &PageResult{Prices: len(prices), Areas: len(areas), Addresses: len(addresses)}
	if res.Prices != res.Areas || res.Areas != res.Addresses {
		e.logger.Warn("[otodom] Element counts differ (price %d, area %d, address %d); pairing by index",
			res.Prices, res.Areas, res.Addresses)
	}

	for i, t := range PairByIndex(prices, areas, addresses) {
		rec, err := buildRecord(t)
		if err != nil {
			res.Dropped++
			e.logger.Warn("[otodom] Error processing listing %d: %v", i+1, err)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}

func buildRecord(t Triple) (models.ListingRecord, error) {
	switch {
	case t.Price == "":
		return models.ListingRecord{}, fmt.Errorf("%w: price", ErrMissingElement)
	case t.Area == "":
		return models.ListingRecord{}, fmt.Errorf("%w: area", ErrMissingElement)
	case t.Address == "":
		return models.ListingRecord{}, fmt.Errorf("%w: address", ErrMissingElement)
	}
	return services.NewListingRecord(t.Price, t.Area, t.Address)
}

// areaTexts returns the span texts of the first dd after every area dt.
func areaTexts(doc *goquery.Document) []string {
	var out []string
	doc.Find(areaLabelCSS).
		FilterFunction(func(_ int, dt *goquery.Selection) bool {
			return normalizeSpace(dt.Text()) == areaLabel
		}).
		Each(func(_ int, dt *goquery.Selection) {
			out = append(out, texts(dt.NextAllFiltered("dd").First().ChildrenFiltered("span"))...)
		})
	return out
}

func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
