// Package storetest opens throwaway databases for tests.
package storetest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"schoolportal/internal/store"
)

// NewSQLite opens a migrated SQLite database in a temp dir that is removed with the test.
func NewSQLite(t testing.TB) *store.DB {
	t.Helper()
	db, err := store.NewDB(context.Background(), store.DriverSQLite, filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}
	return db
}

// NewPostgres opens the database named by PORTAL_TEST_DATABASE_URL and resets its schema.
// The test is skipped when the variable is unset or the server is unreachable.
func NewPostgres(t testing.TB) *store.DB {
	t.Helper()
	url := os.Getenv("PORTAL_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PORTAL_TEST_DATABASE_URL not set")
		return nil
	}
	db, err := store.NewDB(context.Background(), store.DriverPostgres, url)
	if err != nil {
		t.Skipf("db unavailable: %v", err)
		return nil
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Reset(context.Background()); err != nil {
		t.Fatalf("reset postgres: %v", err)
	}
	return db
}
