package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente por ID; (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx,
		`SELECT id, enrollment, name, active, created_at, updated_at FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Enrollment, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get customer", err)
	}
	return &c, nil
}

// ListActive lista clientes activos por nombre.
func (r *CustomerRepo) ListActive(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, enrollment, name, active, created_at, updated_at FROM customers WHERE active ORDER BY name, id`)
	if err != nil {
		return nil, mapError("list customers", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.Enrollment, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, mapError("scan customer", err)
		}
		list = append(list, &c)
	}
	return list, mapError("iterate customers", rows.Err())
}

// Upsert inserta o actualiza por matrícula y completa c.ID.
func (r *CustomerRepo) Upsert(ctx context.Context, c *entity.Customer) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO customers (enrollment, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (enrollment) DO UPDATE SET
			name       = EXCLUDED.name,
			active     = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		c.Enrollment, c.Name, c.Active, c.CreatedAt, c.UpdatedAt,
	).Scan(&c.ID)
	return mapError("upsert customer", err)
}
