package repository

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/citywide-rp/bankcore/internal/config"
	"github.com/citywide-rp/bankcore/internal/db"
)

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()

	if os.Getenv("BANKCORE_INTEGRATION") == "" {
		t.Skip("set BANKCORE_INTEGRATION=1 to run repository tests against postgres")
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	logger := cfg.Logger.NewLogger()

	database, err := db.Connect(context.Background(), &cfg.Database, logger)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	runMigrations(t, database)
	truncateTables(t, database)

	return database
}

func runMigrations(t *testing.T, database *db.DB) {
	t.Helper()

	migrationPath := filepath.Join("..", "..", "internal", "db", "migrations", "000001_init.up.sql")
	sqlBytes, err := os.ReadFile(migrationPath) // #nosec G304
	if err != nil {
		t.Fatalf("failed to read migration file: %v", err)
	}

	_, err = database.ExecContext(context.Background(), string(sqlBytes))
	if err != nil {
		if err.Error() != "pq: relation \"accounts\" already exists" {
			t.Logf("migration execution completed (tables may already exist)")
		}
	}
}

func cleanupTestDB(t *testing.T, database *db.DB) {
	t.Helper()
	if err := database.Close(); err != nil {
		log.Printf("failed to close test database: %v", err)
	}
}

func truncateTables(t *testing.T, database *db.DB) {
	t.Helper()

	tables := []string{"transaction_records", "loans", "cards", "heist_logs"}
	for _, table := range tables {
		_, err := database.ExecContext(context.Background(), "TRUNCATE TABLE "+table+" CASCADE")
		if err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}

	_, err := database.ExecContext(context.Background(), `
		DELETE FROM accounts;
		INSERT INTO accounts (owner_id, account_number, pin_hash, type, status, balance_cents, interest_bps) VALUES
			('seed-owner-1', '1000200030', 'x', 'PERSONAL', 'ACTIVE', 100000, 0),
			('seed-owner-2', '2000300040', 'x', 'SAVINGS', 'ACTIVE', 1000000, 150),
			('seed-owner-3', '3000400050', 'x', 'PERSONAL', 'FROZEN', 50000, 0),
			('seed-owner-4', '4000500060', 'x', 'SAVINGS', 'FROZEN', 200000, 150);
	`)
	if err != nil {
		t.Fatalf("failed to reset accounts: %v", err)
	}
}
