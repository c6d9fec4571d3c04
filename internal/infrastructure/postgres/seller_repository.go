package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.SellerRepository = (*SellerRepo)(nil)

// SellerRepo implementación de SellerRepository (usable con pool o tx).
type SellerRepo struct {
	q Querier
}

// NewSellerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSellerRepository(q Querier) *SellerRepo {
	return &SellerRepo{q: q}
}

// GetByID obtiene un vendedor por ID; (nil, nil) si no existe.
func (r *SellerRepo) GetByID(ctx context.Context, id int64) (*entity.Seller, error) {
	var s entity.Seller
	err := r.q.QueryRow(ctx,
		`SELECT id, code, name, active, created_at, updated_at FROM sellers WHERE id = $1`, id,
	).Scan(&s.ID, &s.Code, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get seller", err)
	}
	return &s, nil
}

// ListActive lista vendedores activos por nombre.
func (r *SellerRepo) ListActive(ctx context.Context) ([]*entity.Seller, error) {
	rows, err := r.q.Query(ctx,
		`SELECT id, code, name, active, created_at, updated_at FROM sellers WHERE active ORDER BY name, id`)
	if err != nil {
		return nil, mapError("list sellers", err)
	}
	defer rows.Close()
	var list []*entity.Seller
	for rows.Next() {
		var s entity.Seller
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, mapError("scan seller", err)
		}
		list = append(list, &s)
	}
	return list, mapError("iterate sellers", rows.Err())
}

// Upsert inserta o actualiza por código de empleado y completa s.ID.
func (r *SellerRepo) Upsert(ctx context.Context, s *entity.Seller) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO sellers (code, name, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO UPDATE SET
			name       = EXCLUDED.name,
			active     = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
		RETURNING id`,
		s.Code, s.Name, s.Active, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
	return mapError("upsert seller", err)
}
