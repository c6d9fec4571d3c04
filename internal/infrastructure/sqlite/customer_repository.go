package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente; (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRowContext(ctx,
		`SELECT id, enrollment, name, active, created_at, updated_at FROM customers WHERE id = ?`, id,
	).Scan(&c.ID, &c.Enrollment, &c.Name, &c.Active, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get customer", err)
	}
	return &c, nil
}

// ListActive lista clientes activos por nombre.
func (r *CustomerRepo) ListActive(ctx context.Context) ([]*entity.Customer, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, enrollment, name, active, created_at, updated_at FROM customers WHERE active = 1 ORDER BY name, id`)
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
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO customers (enrollment, name, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (enrollment) DO UPDATE SET
			name       = excluded.name,
			active     = excluded.active,
			updated_at = excluded.updated_at
		RETURNING id`,
		c.Enrollment, c.Name, c.Active, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	).Scan(&c.ID)
	return mapError("upsert customer", err)
}
