package storage

import (
	"path/filepath"
	"testing"

	"github.com/longbridgeapp/assert"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenSQLite("file:" + filepath.Join(t.TempDir(), "usage.db"))
	assert.Nil(t, err)
	t.Cleanup(func() { db.Close() })
	assert.Nil(t, InitSchema(db))
	// idempotent
	assert.Nil(t, InitSchema(db))
	return NewStore(db)
}

func TestStore_UsageStatsSince(t *testing.T) {
	s := openTestStore(t)
	assert.Nil(t, s.SaveUsage(1, 10, "/frontier", "frontier", 100))
	assert.Nil(t, s.SaveUsage(1, 11, "/frontier", "frontier", 200))
	assert.Nil(t, s.SaveUsage(2, 12, "/explain", "ai", 300))
	assert.Nil(t, s.SaveUsage(2, 12, "/help", "meta", 50))

	stats, err := s.UsageStatsSince(100)
	assert.Nil(t, err)
	assert.Equal(t, 2, len(stats))
	assert.Equal(t, 2, stats["frontier"].Count)
	assert.Equal(t, 2, stats["frontier"].Commands["/frontier"])
	assert.Equal(t, 1, stats["ai"].Count)

	none, err := s.UsageStatsSince(1000)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(none))
}

func TestStore_UsageTimeSeries(t *testing.T) {
	s := openTestStore(t)
	assert.Nil(t, s.SaveUsage(1, 1, "/frontier", "frontier", 3600))
	assert.Nil(t, s.SaveUsage(1, 1, "/frontier", "frontier", 3700))
	assert.Nil(t, s.SaveUsage(1, 1, "/frontier", "frontier", 7300))
	assert.Nil(t, s.SaveUsage(1, 1, "/pair", "market", 7300))

	series, err := s.UsageTimeSeries(0, 3600)
	assert.Nil(t, err)
	assert.Equal(t, []TimeSeriesPoint{{Timestamp: 3600, Count: 2}, {Timestamp: 7200, Count: 1}}, series["frontier"])
	assert.Equal(t, []TimeSeriesPoint{{Timestamp: 7200, Count: 1}}, series["market"])
}
