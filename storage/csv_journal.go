package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"otodom-scraper/models"
)

var journalHeader = []string{
	"page", "raw_price", "raw_area", "raw_address", "price", "area", "street", "city", "scraped_at",
}

// CSVJournal appends every extracted record, before persistence, to a CSV file.
type CSVJournal struct {
	file   *os.File
	writer *csv.Writer
	now    func() time.Time
}

// NewCSVJournal creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVJournal(path string) (*CSVJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(journalHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVJournal{file: f, writer: w, now: time.Now}, nil
}

// Append writes one record and flushes so a crash loses at most the
// current row.
func (c *CSVJournal) Append(page int, rec models.ListingRecord) error {
	row := []string{
		strconv.Itoa(page),
		rec.RawPrice,
		rec.RawArea,
		rec.RawAddress,
		rec.Price,
		rec.Area,
		rec.Street,
		rec.City,
		c.now().Format(time.RFC3339),
	}
	if err := c.writer.Write(row); err != nil {
		return fmt.Errorf("csv: write row: %w", err)
	}
	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVJournal) Close() error {
	c.writer.Flush()
	return c.file.Close()
}
