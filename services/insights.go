package services

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"otodom-scraper/models"
	"otodom-scraper/utils"
)

type areaBin struct {
	label string
	upper float64 // inclusive
}

// areaBins are right-inclusive: (0,60] (60,80] (80,100] (100,inf).
var areaBins = []areaBin{
	{"0-60 m²", 60},
	{"60-80 m²", 80},
	{"80-100 m²", 100},
	{"100+ m²", math.Inf(1)},
}

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

// Generate aggregates rows by area range and by city. Rows with
// non-positive price or area are skipped here too, in case the caller
// did not go through the analysis query.
func (s *InsightService) Generate(rows []models.AnalysisRow) *models.MarketReport {
	report := &models.MarketReport{}

	buckets := make([][]models.AnalysisRow, len(areaBins))
	byCity := make(map[string][]models.AnalysisRow)

	for _, r := range rows {
		if r.Price <= 0 || r.Area <= 0 {
			continue
		}
		report.TotalRows++
		i := binIndex(r.Area)
		buckets[i] = append(buckets[i], r)
		byCity[r.City] = append(byCity[r.City], r)
	}

	for i, bin := range areaBins {
		stats := models.AreaRangeStats{Label: bin.label, Count: len(buckets[i])}
		if stats.Count > 0 {
			prices, perM2 := columns(buckets[i])
			stats.MeanPrice = round2(mean(prices))
			stats.MedianPrice = round2(median(prices))
			stats.MinPrice = round2(prices[0])
			stats.MaxPrice = round2(prices[len(prices)-1])
			stats.MeanPricePerM2 = round2(mean(perM2))
			stats.MedianPricePerM2 = round2(median(perM2))
		}
		report.ByAreaRange = append(report.ByAreaRange, stats)
	}

	for city, list := range byCity {
		prices, perM2 := columns(list)
		report.ByCity = append(report.ByCity, models.CityStats{
			City:             city,
			Count:            len(list),
			MeanPrice:        round2(mean(prices)),
			MedianPrice:      round2(median(prices)),
			MeanPricePerM2:   round2(mean(perM2)),
			MedianPricePerM2: round2(median(perM2)),
		})
	}
	sort.Slice(report.ByCity, func(i, j int) bool {
		if report.ByCity[i].Count != report.ByCity[j].Count {
			return report.ByCity[i].Count > report.ByCity[j].Count
		}
		return report.ByCity[i].City < report.ByCity[j].City
	})

	s.logger.Debug("[report] Aggregated %d rows into %d cities", report.TotalRows, len(report.ByCity))
	return report
}

func (s *InsightService) Print(r *models.MarketReport) {
	sep := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  OTODOM MARKET REPORT (%d listings)\033[0m\n", r.TotalRows)
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	fmt.Printf("\033[1;33m  Analysis by Area Ranges\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  %-10s %6s %12s %12s %12s %12s %10s\n",
		"range", "count", "mean", "median", "min", "max", "PLN/m²")
	for _, a := range r.ByAreaRange {
		fmt.Printf("  %-10s %6d %12.2f %12.2f %12.2f %12.2f %10.2f\n",
			a.Label, a.Count, a.MeanPrice, a.MedianPrice, a.MinPrice, a.MaxPrice, a.MeanPricePerM2)
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Analysis by Location\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if len(r.ByCity) == 0 {
		fmt.Printf("  No location data\n")
	}
	for _, c := range r.ByCity {
		fmt.Printf("  %-24s %6d %12.2f %12.2f %10.2f\n",
			truncate(c.City, 24), c.Count, c.MeanPrice, c.MedianPrice, c.MeanPricePerM2)
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

func binIndex(area float64) int {
	for i, b := range areaBins {
		if area <= b.upper {
			return i
		}
	}
	return len(areaBins) - 1
}

// columns returns sorted price and price-per-m² slices.
func columns(rows []models.AnalysisRow) (prices, perM2 []float64) {
	prices = make([]float64, len(rows))
	perM2 = make([]float64, len(rows))
	for i, r := range rows {
		prices[i] = r.Price
		perM2[i] = r.PricePerM2
	}
	sort.Float64s(prices)
	sort.Float64s(perM2)
	return prices, perM2
}

func mean(sorted []float64) float64 {
	var total float64
	for _, v := range sorted {
		total += v
	}
	return total / float64(len(sorted))
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
