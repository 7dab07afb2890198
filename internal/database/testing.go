package database

import (
	"context"
	"os"
	"testing"
	"time"
)

// SetupTestDB connects to the database named by QUANT_TRADER_TEST_DSN,
// skipping the test when the variable is unset
func SetupTestDB(t *testing.T) *DB {
	dsn := os.Getenv("QUANT_TRADER_TEST_DSN")
	if dsn == "" {
		t.Skip("QUANT_TRADER_TEST_DSN not set, skipping database test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, dsn, 2)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}

	if err := EnsureSchema(ctx, db); err != nil {
		t.Fatalf("failed to ensure test schema: %v", err)
	}

	return db
}

// TeardownTestDB closes the database connection cleanly
func TeardownTestDB(t *testing.T, db *DB) {
	t.Helper()
	db.Close()
}
