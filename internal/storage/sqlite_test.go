package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/radup/fin-good/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

// Helper function to create test transactions.
func createTestTransactions(userID string, count int) []model.Transaction {
	txns := make([]model.Transaction, count)
	baseTime := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < count; i++ {
		txns[i] = model.Transaction{
			ID:          fmt.Sprintf("txn-%s-%d", userID, i+1),
			UserID:      userID,
			Description: fmt.Sprintf("Transaction #%d", i+1),
			Vendor:      fmt.Sprintf("Merchant %d", (i%3)+1),
			Amount:      -float64(i+1) * 10.50,
			Date:        baseTime.Add(time.Duration(i) * 24 * time.Hour),
		}
		txns[i].Hash = txns[i].GenerateHash()
	}
	return txns
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates database file and parent directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		dbPath := filepath.Join(tmpDir, "nested", "dir", "test.db")

		store, err := NewSQLiteStorage(dbPath)
		if err != nil {
			t.Fatalf("Failed to create storage: %v", err)
		}
		defer func() { _ = store.Close() }()

		if err := store.Migrate(context.Background()); err != nil {
			t.Errorf("Failed to migrate: %v", err)
		}
	})

	t.Run("in-memory database", func(t *testing.T) {
		store, err := NewSQLiteStorage(":memory:")
		if err != nil {
			t.Fatalf("Failed to create in-memory storage: %v", err)
		}
		defer func() { _ = store.Close() }()

		if err := store.Migrate(context.Background()); err != nil {
			t.Errorf("Failed to migrate: %v", err)
		}
	})
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()

	t.Run("reaches expected version", func(t *testing.T) {
		var version int
		if err := store.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
			t.Fatalf("Failed to read schema version: %v", err)
		}
		if version != ExpectedSchemaVersion {
			t.Errorf("Schema version = %d, want %d", version, ExpectedSchemaVersion)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		if err := store.Migrate(ctx); err != nil {
			t.Errorf("Re-running migrations failed: %v", err)
		}
	})
}

func TestBeginTx(t *testing.T) {
	ctx := context.Background()

	t.Run("commit makes writes visible", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		tx, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}

		if _, err := tx.SaveTransactions(ctx, createTestTransactions("user1", 2)); err != nil {
			_ = tx.Rollback()
			t.Fatalf("Failed to save transactions: %v", err)
		}
		if err := tx.Commit(); err != nil {
			t.Fatalf("Failed to commit: %v", err)
		}

		txns, err := store.GetUncategorizedTransactions(ctx, "user1", "")
		if err != nil {
			t.Fatalf("Failed to get transactions: %v", err)
		}
		if len(txns) != 2 {
			t.Errorf("Got %d transactions, want 2", len(txns))
		}
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		store, cleanup := createTestStorage(t)
		defer cleanup()

		tx, err := store.BeginTx(ctx)
		if err != nil {
			t.Fatalf("Failed to begin transaction: %v", err)
		}

		if _, err := tx.SaveTransactions(ctx, createTestTransactions("user1", 2)); err != nil {
			_ = tx.Rollback()
			t.Fatalf("Failed to save transactions: %v", err)
		}
		if err := tx.Rollback(); err != nil {
			t.Fatalf("Failed to rollback: %v", err)
		}

		txns, err := store.GetUncategorizedTransactions(ctx, "user1", "")
		if err != nil {
			t.Fatalf("Failed to get transactions: %v", err)
		}
		if len(txns) != 0 {
			t.Errorf("Got %d transactions after rollback, want 0", len(txns))
		}
	})
}
