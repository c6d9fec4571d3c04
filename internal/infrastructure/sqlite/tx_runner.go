package sqlite

import (
	"context"
	"database/sql"

	"go.uber.org/multierr"

	"github.com/jhoicas/punto-venta/internal/application/sales"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ sales.SaleTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción BEGIN IMMEDIATE.
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner construye el runner.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunSale abre la transacción de escritura (espera hasta busy_timeout por el lock),
// ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	sellerRepo repository.SellerRepository,
	customerRepo repository.CustomerRepository,
	folioRepo repository.FolioRepository,
	saleRepo repository.SaleRepository,
) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("begin transaction", err)
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			err = multierr.Append(err, mapError("rollback", rbErr))
		}
	}()

	if err := fn(
		NewProductRepository(tx),
		NewSellerRepository(tx),
		NewCustomerRepository(tx),
		NewFolioRepository(tx),
		NewSaleRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return mapError("commit transaction", err)
	}
	committed = true
	return nil
}
