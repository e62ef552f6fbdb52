package storage

import (
	"context"

	"otodom-scraper/models"
)

// RecordWriter is the interface any listing sink must satisfy.
type RecordWriter interface {
	Insert(ctx context.Context, rec models.ListingRecord) (int64, error)
	Close() error
}

// RecordJournal is the interface for keeping a raw trace of extracted records.
type RecordJournal interface {
	Append(page int, rec models.ListingRecord) error
	Close() error
}

var (
	_ RecordWriter  = (*PropertyStore)(nil)
	_ RecordJournal = (*CSVJournal)(nil)
)
