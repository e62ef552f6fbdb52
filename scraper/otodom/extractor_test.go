package otodom

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otodom-scraper/utils"
)

type staticPage struct {
	html string
	err  error
}

func (p staticPage) HTML(context.Context) (string, error) { return p.html, p.err }

func extract(t *testing.T, html string) *PageResult {
	t.Helper()
	res, err := NewExtractor(utils.NewNopLogger()).ExtractPage(context.Background(), staticPage{html: html})
	require.NoError(t, err)
	return res
}

func TestPairByIndexTruncatesToShortest(t *testing.T) {
	prices := []string{"p1", "p2", "p3", "p4", "p5"}
	areas := []string{"a1", "a2", "a3", "a4"}
	addresses := []string{"s1", "s2", "s3", "s4", "s5"}

	triples := PairByIndex(prices, areas, addresses)

	require.Len(t, triples, 4)
	assert.Equal(t, Triple{Price: "p4", Area: "a4", Address: "s4"}, triples[3])
	assert.Empty(t, PairByIndex(nil, areas, addresses))
}

func TestExtractPageWellFormed(t *testing.T) {
	res := extract(t, pageHTML(
		listingHTML("1 250 000 zł", "54.3 m²", "Mokotów, Warszawa, mazowieckie"),
		listingHTML("399 000 zł", "38 m²", "ul. Długa, Gdańsk, pomorskie"),
	))

	require.Len(t, res.Records, 2)
	assert.Equal(t, 0, res.Dropped)
	assert.Equal(t, 2, res.Prices)
	assert.Equal(t, 2, res.Areas)
	assert.Equal(t, 2, res.Addresses)

	first := res.Records[0]
	assert.Equal(t, "1250000", first.Price)
	assert.Equal(t, "54.3", first.Area)
	assert.Equal(t, "mazowieckie", first.Street)
	assert.Equal(t, "Warszawa", first.City)
	assert.Equal(t, "1 250 000 zł", first.RawPrice)

	assert.Equal(t, "399000", res.Records[1].Price)
	assert.Equal(t, "Gdańsk", res.Records[1].City)
}

func TestExtractPageTruncatesOnMismatch(t *testing.T) {
	res := extract(t, pageHTML(
		listingHTML("100 zł", "10 m²", "a, City1, S1"),
		listingWithoutArea("200 zł", "b, City2, S2"),
		listingHTML("300 zł", "30 m²", "c, City3, S3"),
		listingHTML("400 zł", "40 m²", "d, City4, S4"),
		listingHTML("500 zł", "50 m²", "e, City5, S5"),
	))

	assert.Equal(t, 5, res.Prices)
	assert.Equal(t, 4, res.Areas)
	assert.Equal(t, 5, res.Addresses)
	require.Len(t, res.Records, 4)

	// Known defect: the missing area shifts every later pairing by one.
	assert.Equal(t, "200", res.Records[1].Price)
	assert.Equal(t, "30", res.Records[1].Area)
	assert.Equal(t, "City2", res.Records[1].City)
}

func TestExtractPageIsolatesBadRecord(t *testing.T) {
	res := extract(t, pageHTML(
		listingHTML("100 zł", "10 m²", "a, Warszawa, S1"),
		listingHTML("200 zł", "20 m²", "Nowhere"),
		listingHTML("300 zł", "30 m²", "c, Kraków, S3"),
	))

	require.Len(t, res.Records, 2)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "Warszawa", res.Records[0].City)
	assert.Equal(t, "Kraków", res.Records[1].City)
}

func TestExtractPageDropsEmptyElement(t *testing.T) {
	res := extract(t, pageHTML(
		listingHTML("", "10 m²", "a, Warszawa, S1"),
		listingHTML("300 zł", "30 m²", "c, Kraków, S3"),
	))

	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, "300", res.Records[0].Price)
}

func TestExtractPageNoListings(t *testing.T) {
	res := extract(t, pageHTML())
	assert.Empty(t, res.Records)
	assert.Equal(t, 0, res.Prices)
}

func TestExtractPageHTMLError(t *testing.T) {
	boom := errors.New("target closed")
	_, err := NewExtractor(utils.NewNopLogger()).ExtractPage(context.Background(), staticPage{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestBuildRecordMissingElement(t *testing.T) {
	_, err := buildRecord(Triple{Price: "1", Area: "", Address: "a, b"})
	assert.ErrorIs(t, err, ErrMissingElement)
}
