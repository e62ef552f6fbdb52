package models

import "time"

// ListingRecord is one listing extracted from a results page.
// The Raw* fields are the verbatim element texts; the rest are normalised.
type ListingRecord struct {
	RawPrice   string
	RawArea    string
	RawAddress string

	// Price and Area are decimal text; the store performs numeric coercion.
	Price  string
	Area   string
	Street string
	City   string
}

// PropertyRow is a persisted row of the properties table.
type PropertyRow struct {
	ID        int64
	Price     float64
	Area      float64
	Voie      string
	City      string
	CreatedAt time.Time
}

// AnalysisRow is one row of the analysis read query.
type AnalysisRow struct {
	Price      float64   `db:"price"`
	Area       float64   `db:"area"`
	Voie       string    `db:"voie"`
	City       string    `db:"city"`
	CreatedAt  time.Time `db:"created_at"`
	PricePerM2 float64   `db:"price_per_m2"`
}

// RunSummary reports the outcome of one scrape run.
type RunSummary struct {
	RunID          string
	Pages          int
	Extracted      int
	Dropped        int
	Inserted       int
	InsertFailures int
	StopReason     string
}

// AreaRangeStats aggregates listings in one floor-area bucket.
type AreaRangeStats struct {
	Label            string
	Count            int
	MeanPrice        float64
	MedianPrice      float64
	MinPrice         float64
	MaxPrice         float64
	MeanPricePerM2   float64
	MedianPricePerM2 float64
}

// CityStats aggregates listings in one city.
type CityStats struct {
	City             string
	Count            int
	MeanPrice        float64
	MedianPrice      float64
	MeanPricePerM2   float64
	MedianPricePerM2 float64
}

// MarketReport holds the computed analytics over the stored rows.
type MarketReport struct {
	TotalRows   int
	ByAreaRange []AreaRangeStats
	ByCity      []CityStats
}
