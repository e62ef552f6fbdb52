package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"otodom-scraper/models"
	"otodom-scraper/utils"
)

// ErrNoConnection is returned by every write when the store was built
// without a database handle.
var ErrNoConnection = errors.New("store: no database connection")

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS properties (
		id         SERIAL PRIMARY KEY,
		price      DECIMAL,
		area       DECIMAL,
		voie       VARCHAR(255),
		city       VARCHAR(255),
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

const insertSQL = `INSERT INTO properties (price, area, voie, city) VALUES ($1, $2, $3, $4) RETURNING id`

// AnalysisQuery is the read contract consumed by reporting.
const AnalysisQuery = `
	SELECT price, area, voie, city, created_at, price/area AS price_per_m2
	FROM properties
	WHERE price > 0 AND area > 0
`

// OpenDB opens a PostgreSQL pool and verifies it with a single ping.
func OpenDB(ctx context.Context, dsn string, timeout time.Duration) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// PropertyStore writes listing records to the properties table, one
// transaction per row. A nil db puts the store in degraded mode where
// every write fails with ErrNoConnection.
type PropertyStore struct {
	db     *sqlx.DB
	logger *utils.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewPropertyStore wraps db. db may be nil.
func NewPropertyStore(db *sql.DB, logger *utils.Logger) *PropertyStore {
	s := &PropertyStore{logger: logger}
	if db != nil {
		s.db = sqlx.NewDb(db, "postgres")
	}
	return s
}

// Connected reports whether the store has a database handle.
func (s *PropertyStore) Connected() bool {
	return s.db != nil
}

// EnsureSchema creates the properties table if it does not exist.
func (s *PropertyStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		s.logger.Warn("[store] Skipping schema check: no database connection")
		return ErrNoConnection
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin schema tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, schemaDDL); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("postgres: create table: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit schema: %w", err)
	}
	return nil
}

// Insert stores one record in its own transaction and returns the new row
// id. On failure the transaction is rolled back and the pool stays usable.
func (s *PropertyStore) Insert(ctx context.Context, rec models.ListingRecord) (int64, error) {
	if s.db == nil {
		s.logger.Warn("[store] Not saving %s, %s: no database connection", rec.Street, rec.City)
		return 0, ErrNoConnection
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("postgres: begin insert tx: %w", err)
	}

	var id int64
	if err := tx.QueryRowContext(ctx, insertSQL, rec.Price, rec.Area, rec.Street, rec.City).Scan(&id); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("[store] Rollback failed: %v", rbErr)
		}
		return 0, fmt.Errorf("postgres: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("postgres: commit insert: %w", err)
	}
	return id, nil
}

// FetchAnalysis runs AnalysisQuery and returns every matching row.
func (s *PropertyStore) FetchAnalysis(ctx context.Context) ([]models.AnalysisRow, error) {
	if s.db == nil {
		return nil, ErrNoConnection
	}

	var rows []models.AnalysisRow
	if err := s.db.SelectContext(ctx, &rows, AnalysisQuery); err != nil {
		return nil, fmt.Errorf("postgres: fetch analysis: %w", err)
	}
	return rows, nil
}

// Close releases the pool. Later calls return the first result.
func (s *PropertyStore) Close() error {
	s.closeOnce.Do(func() {
		if s.db != nil {
			s.closeErr = s.db.Close()
		}
	})
	return s.closeErr
}
