package repository

import (
	"context"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
)

// SellerRepository define el puerto de persistencia para Seller.
type SellerRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Seller, error)
	ListActive(ctx context.Context) ([]*entity.Seller, error)
	// Upsert inserta o actualiza por código de empleado y completa seller.ID.
	Upsert(ctx context.Context, seller *entity.Seller) error
}
