package repository

import (
	"context"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Customer, error)
	ListActive(ctx context.Context) ([]*entity.Customer, error)
	// Upsert inserta o actualiza por matrícula y completa customer.ID.
	Upsert(ctx context.Context, customer *entity.Customer) error
}
