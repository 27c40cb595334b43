package db

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema
// applied. Stores issue portable queries, so the same code runs against
// PostgreSQL in production and SQLite under test.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}

	// In-memory SQLite lives per connection.
	database.SetMaxOpenConns(1)

	if err := EnsureSchema(database); err != nil {
		database.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { database.Close() })

	return database
}
