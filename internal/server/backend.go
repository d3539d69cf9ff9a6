package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Idahel/js-project-api/config"
	"github.com/Idahel/js-project-api/internal/db"
	"github.com/Idahel/js-project-api/internal/services"
	"github.com/Idahel/js-project-api/internal/store/memstore"
	"github.com/Idahel/js-project-api/internal/store/mongostore"
	"github.com/Idahel/js-project-api/internal/store/pgstore"
)

// Backend is an opened data store exposing both repositories.
type Backend struct {
	Driver   string
	Users    services.UserRepository
	Thoughts services.ThoughtRepository
	Ping     func(ctx context.Context) error

	close func(ctx context.Context) error
}

// Close releases the store's connections.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// OpenBackend connects the store selected by cfg.StoreDriver.
func OpenBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.StoreMongo, "":
		database, err := db.OpenMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := mongostore.EnsureIndexes(ctx, database); err != nil {
			_ = database.Client().Disconnect(context.Background())
			return nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		logger.Info("connected to store", "driver", config.StoreMongo, "database", database.Name())
		return &Backend{
			Driver:   config.StoreMongo,
			Users:    mongostore.NewUserRepository(database),
			Thoughts: mongostore.NewThoughtRepository(database),
			Ping:     func(ctx context.Context) error { return db.PingMongo(ctx, database.Client()) },
			close:    func(ctx context.Context) error { return database.Client().Disconnect(ctx) },
		}, nil

	case config.StorePostgres:
		conn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		logger.Info("connected to store", "driver", config.StorePostgres, "database", cfg.Database.DBName)
		return &Backend{
			Driver:   config.StorePostgres,
			Users:    pgstore.NewUserRepository(conn),
			Thoughts: pgstore.NewThoughtRepository(conn),
			Ping:     conn.PingContext,
			close:    func(context.Context) error { return conn.Close() },
		}, nil

	case config.StoreMemory:
		mem := memstore.New()
		logger.Warn("using in-memory store, data is lost on restart")
		return &Backend{
			Driver:   config.StoreMemory,
			Users:    mem.Users(),
			Thoughts: mem.Thoughts(),
			Ping:     mem.Ping,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
