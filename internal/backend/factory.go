package backend

import (
	"context"
	"fmt"
	"log/slog"

	"costs/internal/storage"
	"costs/internal/storage/memory"
	"costs/internal/storage/mongostore"
	"costs/internal/storage/sqlstore"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var (
		store storage.Store
		err   error
	)
	switch config.Type {
	case MemoryBackend:
		store = memory.New()
	case SQLiteBackend:
		store, err = sqlstore.OpenSQLite(ctx, config.SQLiteDBPath)
	case PostgresBackend:
		store, err = sqlstore.OpenPostgres(ctx, config.PostgresDSN)
	case MongoBackend:
		store, err = mongostore.New(ctx, config.MongoURI, config.MongoDatabase)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s backend: %w", config.Type, err)
	}

	if config.UsersSeedFile != "" {
		users, err := storage.LoadUsersSeed(config.UsersSeedFile)
		if err == nil {
			err = storage.SeedUsers(ctx, store, users)
		}
		if err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
	}

	f.logger.Info("Initialized backend",
		"type", config.Type.String(),
		"users_seed", config.UsersSeedFile)

	return &BackendResult{
		Store:   store,
		Cleanup: store.Close,
	}, nil
}
