package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otodom-scraper/models"
	"otodom-scraper/utils"
)

// Runs against a real PostgreSQL when OTODOM_TEST_DSN is set, e.g.
// "host=localhost port=5432 user=postgres password=mojehaslo dbname=postgres sslmode=disable".
func TestPostgresRoundTrip(t *testing.T) {
	dsn := os.Getenv("OTODOM_TEST_DSN")
	if dsn == "" {
		t.Skip("OTODOM_TEST_DSN not set")
	}
	ctx := context.Background()

	db, err := OpenDB(ctx, dsn, 5*time.Second)
	require.NoError(t, err)
	store := NewPropertyStore(db, utils.NewNopLogger())
	defer store.Close()

	require.NoError(t, store.EnsureSchema(ctx))
	require.NoError(t, store.EnsureSchema(ctx))

	_, err = store.Insert(ctx, models.ListingRecord{Price: "not-a-number", Area: "40", Street: "x", City: "y"})
	require.Error(t, err)

	first, err := store.Insert(ctx, models.ListingRecord{Price: "450000", Area: "45", Street: "Mokotów", City: "Warszawa"})
	require.NoError(t, err)
	second, err := store.Insert(ctx, models.ListingRecord{Price: "0", Area: "30", Street: "Nowa Huta", City: "Kraków"})
	require.NoError(t, err)
	assert.Greater(t, second, first)

	rows, err := store.FetchAnalysis(ctx)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Greater(t, r.Price, 0.0)
		assert.Greater(t, r.Area, 0.0)
	}
}
