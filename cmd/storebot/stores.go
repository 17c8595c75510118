package main

import (
	"context"
	"log/slog"

	"storebot/config"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/infra/persistence/dynamodb"
	"storebot/internal/infra/persistence/jsonfile"
	"storebot/internal/infra/persistence/memory"
	"storebot/internal/infra/persistence/postgres"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type storesParams struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// stores is the set of repositories selected by storage.driver and
// session.driver.
type stores struct {
	catalog  repository.CatalogRepository
	orders   repository.OrderRepository
	sessions repository.SessionRepository
	baskets  repository.BasketRepository
}

func (s *stores) catalogRepo() repository.CatalogRepository { return s.catalog }
func (s *stores) orderRepo() repository.OrderRepository { return s.orders }
func (s *stores) sessionRepo() repository.SessionRepository { return s.sessions }
func (s *stores) basketRepo() repository.BasketRepository { return s.baskets }

func newStores(ctx context.Context, params storesParams) (*stores, error) {
	cfg := params.Config

	var db *gorm.DB
	openDB := func() (*gorm.DB, error) {
		if db != nil {
			return db, nil
		}
		var err error
		db, err = postgres.New(postgres.Params{
			Lifecycle: params.Lifecycle,
			Config:    cfg,
			Logger:    params.Logger,
		})

		return db, err
	}

	s := &stores{}

	switch cfg.Storage.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		s.catalog, s.orders = store, store
	case config.DriverFile:
		store, err := jsonfile.Open(cfg.Storage.File.Dir, params.Logger)
		if err != nil {
			return nil, err
		}
		s.catalog, s.orders = store, store
	case config.DriverPostgres:
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		s.catalog, s.orders = postgres.NewCatalogRepository(db), postgres.NewOrderRepository(db)
	case config.DriverDynamoDB:
		client, err := dynamodb.NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		store := dynamodb.NewStore(client, cfg)
		s.catalog, s.orders = store, store
	default:
		return nil, errors.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	switch cfg.Session.Driver {
	case config.DriverMemory:
		store := memory.NewSessionStore()
		s.sessions, s.baskets = store, store
	case config.DriverPostgres:
		db, err := openDB()
		if err != nil {
			return nil, err
		}
		s.sessions, s.baskets = postgres.NewSessionRepository(db), postgres.NewBasketRepository(db)
	default:
		return nil, errors.Errorf("unknown session driver %q", cfg.Session.Driver)
	}

	params.Logger.Info("Storage selected",
		slog.String("storage", cfg.Storage.Driver),
		slog.String("session", cfg.Session.Driver),
	)

	return s, nil
}
