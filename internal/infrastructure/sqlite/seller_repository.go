package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
)

var _ repository.SellerRepository = (*SellerRepo)(nil)

// SellerRepo implementación de SellerRepository.
type SellerRepo struct {
	q Querier
}

// NewSellerRepository construye el adaptador.
func NewSellerRepository(q Querier) *SellerRepo {
	return &SellerRepo{q: q}
}

// GetByID obtiene un vendedor; (nil, nil) si no existe.
func (r *SellerRepo) GetByID(ctx context.Context, id int64) (*entity.Seller, error) {
	var s entity.Seller
	err := r.q.QueryRowContext(ctx,
		`SELECT id, code, name, active, created_at, updated_at FROM sellers WHERE id = ?`, id,
	).Scan(&s.ID, &s.Code, &s.Name, &s.Active, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get seller", err)
	}
	return &s, nil
}

// ListActive lista vendedores activos por nombre.
func (r *SellerRepo) ListActive(ctx context.Context) ([]*entity.Seller, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, code, name, active, created_at, updated_at FROM sellers WHERE active = 1 ORDER BY name, id`)
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

// Upsert inserta o actualiza por código y completa s.ID.
func (r *SellerRepo) Upsert(ctx context.Context, s *entity.Seller) error {
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO sellers (code, name, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			name       = excluded.name,
			active     = excluded.active,
			updated_at = excluded.updated_at
		RETURNING id`,
		s.Code, s.Name, s.Active, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	).Scan(&s.ID)
	return mapError("upsert seller", err)
}
