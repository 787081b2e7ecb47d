// Package store holds the record store backends for contacts.
//
// Every backend assigns ids itself, reports unknown ids with
// sentinel.ErrNotFound, syntactically invalid ids with sentinel.ErrInvalidID
// and duplicate names with sentinel.ErrAlreadyUsed. Delete of an absent
// record succeeds.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"phonebook/internal/contact/models"
	"phonebook/internal/platform/config"
	"phonebook/internal/platform/mongo"
	"phonebook/internal/platform/postgres"
	"phonebook/internal/platform/redis"
)

// Store is implemented by every contact backend.
type Store interface {
	List(ctx context.Context) ([]*models.Contact, error)
	FindByID(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) error
	UpdateNumber(ctx context.Context, id, number string) (*models.Contact, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MongoStore)(nil)
	_ Store = (*RedisStore)(nil)
)

// Open connects the backend selected by cfg.StoreURL and prepares its schema.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (Store, error) {
	backend, err := cfg.Backend()
	if err != nil {
		return nil, err
	}

	switch backend {
	case config.BackendMemory:
		s := NewInMemoryStore()
		if cfg.Seed {
			s.Seed(SampleContacts()...)
			logger.Info("seeded in-memory phonebook", "contacts", len(SampleContacts()))
		}
		return s, nil

	case config.BackendPostgres:
		db, err := postgres.Open(ctx, cfg.StoreURL, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		s := NewPostgres(db, cfg.Postgres.Table)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return s, nil

	case config.BackendMongo:
		client, err := mongo.New(ctx, cfg.StoreURL, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		s := NewMongo(client.Database.Collection(cfg.Mongo.Collection), client.Close)
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return s, nil

	case config.BackendRedis:
		client, err := redis.New(ctx, cfg.StoreURL, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedis(client.Client, cfg.Redis.Prefix), nil

	default:
		return nil, fmt.Errorf("unsupported store backend %q", backend)
	}
}
