package main

import (
	"context"
	"fmt"

	"github.com/radup/fin-good/internal/common"
	"github.com/radup/fin-good/internal/config"
	"github.com/radup/fin-good/internal/service"
	"github.com/radup/fin-good/internal/storage"
	"github.com/spf13/viper"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/fingood/fingood.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// currentUser resolves the acting user ID from flags or config.
func currentUser() (string, error) {
	user := viper.GetString("user")
	if user == "" {
		return "", common.NewUserError(
			"no user configured: pass --user or set 'user' in the config file",
			common.ErrMissingConfig)
	}
	return user, nil
}
