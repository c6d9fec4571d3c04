package repository

import (
	"context"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// FindBySKU devuelve (nil, nil) si el SKU no existe.
type ProductRepository interface {
	FindBySKU(ctx context.Context, sku string) (*entity.Product, error)
	ListActive(ctx context.Context) ([]*entity.Product, error)
	Search(ctx context.Context, q string, limit int) ([]*entity.Product, error)
	Upsert(ctx context.Context, product *entity.Product) error
}
