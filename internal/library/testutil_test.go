package library

import (
	"database/sql"
	"testing"
	"time"

	"github.com/vmunix/autoani/internal/migrations"
	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := migrations.Apply(db); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return db
}

// fixedClock pins the store's clock so timestamps are predictable.
func fixedClock(s *Store, t time.Time) {
	s.now = func() time.Time { return t }
}

func addTestSeries(t *testing.T, s *Store, id int64, name string, total *int) *Series {
	t.Helper()
	sr := &Series{ID: id, Title: name, Name: name, TotalEpisodes: total, FeedURL: "https://mikanani.me/RSS/Bangumi?bangumiId=1"}
	if err := s.AddSeries(sr); err != nil {
		t.Fatalf("AddSeries: %v", err)
	}
	return sr
}

// ptr is a helper to create pointer to value
func ptr[T any](v T) *T {
	return &v
}
