package services

import (
	"errors"
	"fmt"
	"strings"

	"otodom-scraper/models"
)

const (
	nbsp          = "\u00a0"
	currencyToken = "zł"
	areaUnitToken = "m²"
	addressSep    = ", "
)

// ErrAddressTooShort is returned when an address has fewer than two
// comma-separated segments.
var ErrAddressTooShort = errors.New("address has fewer than 2 segments")

// NormalizePrice strips non-breaking spaces, the currency token and every
// plain space. The remaining text is not validated; the store decides
// whether it is numeric.
func NormalizePrice(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, nbsp, "")
	s = strings.ReplaceAll(s, currencyToken, "")
	s = strings.ReplaceAll(s, " ", "")
	return strings.TrimSpace(s)
}

// NormalizeArea strips the unit suffix and surrounding whitespace.
func NormalizeArea(raw string) string {
	s := strings.ReplaceAll(strings.TrimSpace(raw), areaUnitToken, "")
	return strings.TrimSpace(s)
}

// SplitAddress returns the last ", " segment as street and the one before
// it as city.
//
//	"Foo, Warszawa, Mazowieckie" → street "Mazowieckie", city "Warszawa"
func SplitAddress(raw string) (street, city string, err error) {
	parts := strings.Split(raw, addressSep)
	if len(parts) < 2 {
		return "", "", fmt.Errorf("%w: %q", ErrAddressTooShort, raw)
	}
	street = strings.TrimSpace(parts[len(parts)-1])
	city = strings.TrimSpace(parts[len(parts)-2])
	return street, city, nil
}

// NewListingRecord normalises one (price, area, address) triple.
func NewListingRecord(rawPrice, rawArea, rawAddress string) (models.ListingRecord, error) {
	street, city, err := SplitAddress(rawAddress)
	if err != nil {
		return models.ListingRecord{}, err
	}
	return models.ListingRecord{
		RawPrice:   rawPrice,
		RawArea:    rawArea,
		RawAddress: rawAddress,
		Price:      NormalizePrice(rawPrice),
		Area:       NormalizeArea(rawArea),
		Street:     street,
		City:       city,
	}, nil
}
