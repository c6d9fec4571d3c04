package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/multierr"

	"github.com/jhoicas/punto-venta/internal/application/sales"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ sales.SaleTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner. lockTimeout acota la espera por el lock de ventas.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// RunSale inicia la transacción, toma el lock exclusivo de escritores de ventas
// (SHARE ROW EXCLUSIVE: bloquea a otros escritores, no a los lectores), ejecuta fn con
// repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	sellerRepo repository.SellerRepository,
	customerRepo repository.CustomerRepository,
	folioRepo repository.FolioRepository,
	saleRepo repository.SaleRepository,
) error) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return mapError("begin transaction", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = multierr.Append(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", r.lockTimeout.Milliseconds())); err != nil {
		return mapError("set lock_timeout", err)
	}
	if _, err := tx.Exec(ctx, "LOCK TABLE sales IN SHARE ROW EXCLUSIVE MODE"); err != nil {
		return mapError("lock sales", err)
	}

	if err := fn(
		NewProductRepository(tx),
		NewSellerRepository(tx),
		NewCustomerRepository(tx),
		NewFolioRepository(tx),
		NewSaleRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapError("commit transaction", err)
	}
	return nil
}
