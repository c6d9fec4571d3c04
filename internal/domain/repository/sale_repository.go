package repository

import (
	"context"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas. Solo agrega filas:
// no hay Update ni Delete. Las lecturas devuelven (nil, nil) si la venta no existe.
type SaleRepository interface {
	// Create inserta la cabecera y completa sale.ID.
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	CreatePayment(ctx context.Context, payment *entity.Payment) error

	GetByID(ctx context.Context, id int64) (*entity.Sale, error)
	GetByFolio(ctx context.Context, folio string) (*entity.Sale, error)
	GetByClientRef(ctx context.Context, clientRef string) (*entity.Sale, error)
	// LastCreated devuelve la venta creada más recientemente (por created_at, no por id).
	LastCreated(ctx context.Context) (*entity.Sale, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Sale, error)

	ListItems(ctx context.Context, saleID int64) ([]*entity.SaleItem, error)
	ListPayments(ctx context.Context, saleID int64) ([]*entity.Payment, error)
}
