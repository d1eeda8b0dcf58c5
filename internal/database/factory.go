package database

import (
	"fmt"
	"os"
	"path/filepath"

	"vsh/internal/config"
)

// NewStoreFromConfig opens the snapshot store selected by cfg.Type and
// migrates it. A sqlite store lives in <data_dir>/<sessionID>.db.
func NewStoreFromConfig(cfg config.DatabaseConfig, sessionID string) (*SQLiteStore, error) {
	var path string
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data_dir: %w", err)
		}
		path = filepath.Join(cfg.DataDir, sessionID+".db")
	case "memory":
		path = ":memory:"
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}

	store, err := NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating %s: %w", path, err)
	}
	return store, nil
}
