// Package backend selects and constructs the concrete store implementation
// from configuration.
package backend

import (
	"context"
	"fmt"

	"spendwise/internal/log"
	"spendwise/internal/storage"
	"spendwise/internal/storage/memory"
	"spendwise/internal/storage/mongo"
	"spendwise/internal/storage/sqlite"
)

// Type identifies a store backend.
type Type string

const (
	MongoBackend  Type = "mongo"
	SQLiteBackend Type = "sqlite"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MongoBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds what backend construction needs.
type Config struct {
	Type Type

	// Mongo specific
	MongoURI      string
	MongoDatabase string

	// SQLite specific
	SQLitePath string
}

// Open constructs the store for the configured backend.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (storage.Store, error) {
	logger = logger.WithComponent(log.ComponentStorage)

	switch cfg.Type {
	case MongoBackend:
		store, err := mongo.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("open mongo backend: %w", err)
		}
		logger.Info("Initialized mongo backend", "database", cfg.MongoDatabase)
		return store, nil
	case SQLiteBackend:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		logger.Info("Initialized sqlite backend", "path", cfg.SQLitePath)
		return store, nil
	case MemoryBackend:
		logger.Info("Initialized memory backend")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown backend type %q", cfg.Type)
	}
}
