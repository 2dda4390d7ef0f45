package report

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleStats() []MapStats {
	return []MapStats{
		{Flight: "F1", Crop: 0, Name: "a_Correction_map", VegPixels: 12,
			MEBefore: 1.6, MAEBefore: 1.6, StdBefore: 0.04, MADBefore: 0.05,
			MEAfter: 0.1, MAEAfter: 0.12, StdAfter: 0.02, MADAfter: 0.01},
		{Flight: "F1", Crop: 1, Name: "b_Correction_map", VegPixels: 8,
			MEBefore: 1.2, MEAfter: 0.2},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	db := openTestDB(t)

	run := NewRun([]string{"F2", "F3"}, 2000, 0.93)
	require.NotEmpty(t, run.ID)
	require.NoError(t, db.InsertRun(run))
	require.NoError(t, db.InsertMapStats(run.ID, sampleStats()))

	got, err := db.MapStatsForRun(run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sampleStats(), got)

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, []string{"F2", "F3"}, runs[0].TrainFlights)
	assert.Equal(t, 2000, runs[0].NumRows)
	assert.InDelta(t, 0.93, runs[0].R2, 1e-9)
	assert.False(t, runs[0].CreatedAt.IsZero())
}

func TestStoreMigrations(t *testing.T) {
	t.Run("reopen is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "runs.db")
		db, err := OpenDB(path)
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db, err = OpenDB(path)
		require.NoError(t, err)
		defer db.Close()
		assert.NoError(t, db.MigrateUp(migrationsFS))
	})

	t.Run("down drops the schema", func(t *testing.T) {
		db := openTestDB(t)
		require.NoError(t, db.MigrateDown(migrationsFS))
		assert.Error(t, db.InsertRun(NewRun(nil, 0, 0)))
	})
}

func TestStoreStatsForUnknownRun(t *testing.T) {
	db := openTestDB(t)
	got, err := db.MapStatsForRun("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, got)
}
