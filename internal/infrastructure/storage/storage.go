// Package storage elige el adaptador de almacén (SQLite o PostgreSQL) según la configuración
// y aplica el esquema embebido al abrirlo.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/punto-venta/internal/application/sales"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
	"github.com/jhoicas/punto-venta/internal/infrastructure/postgres"
	"github.com/jhoicas/punto-venta/internal/infrastructure/sqlite"
	"github.com/jhoicas/punto-venta/pkg/config"
	"github.com/jhoicas/punto-venta/pkg/logger"
	"github.com/jhoicas/punto-venta/pkg/migrate"
)

// Store repos de lectura y runner transaccional sobre el driver configurado.
type Store struct {
	Products  repository.ProductRepository
	Sellers   repository.SellerRepository
	Customers repository.CustomerRepository
	Sales     repository.SaleRepository
	TxRunner  sales.SaleTxRunner
	Ping      func(ctx context.Context) error
	Close     func()
}

// Open abre el almacén y aplica el esquema embebido.
func Open(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		res, err := postgres.Migrate(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrar PostgreSQL: %w", err)
		}
		logMigration(log, cfg.Driver, res)
		return &Store{
			Products:  postgres.NewProductRepository(pool),
			Sellers:   postgres.NewSellerRepository(pool),
			Customers: postgres.NewCustomerRepository(pool),
			Sales:     postgres.NewSaleRepository(pool),
			TxRunner:  postgres.NewTxRunner(pool, cfg.BusyTimeout()),
			Ping:      pool.Ping,
			Close:     pool.Close,
		}, nil

	default:
		db, err := sqlite.Open(ctx, sqlite.Options{Path: cfg.SQLitePath, BusyTimeout: cfg.BusyTimeout()})
		if err != nil {
			return nil, fmt.Errorf("abrir SQLite: %w", err)
		}
		res, err := sqlite.Migrate(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrar SQLite: %w", err)
		}
		logMigration(log, cfg.Driver, res)
		return &Store{
			Products:  sqlite.NewProductRepository(db),
			Sellers:   sqlite.NewSellerRepository(db),
			Customers: sqlite.NewCustomerRepository(db),
			Sales:     sqlite.NewSaleRepository(db),
			TxRunner:  sqlite.NewTxRunner(db),
			Ping:      db.PingContext,
			Close:     func() { _ = db.Close() },
		}, nil
	}
}

func logMigration(log *logger.Logger, driver string, res *migrate.Result) {
	log.Info().
		Str("driver", driver).
		Int64("version", res.Version).
		Ints64("applied", res.Applied).
		Msg("esquema al día")
}
