package subscription_test

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/vmunix/autoani/internal/library"
	"github.com/vmunix/autoani/internal/migrations"
	_ "modernc.org/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestStore(t *testing.T) *library.Store {
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
	return library.NewStore(db)
}

func ptr[T any](v T) *T {
	return &v
}
