package repository

import (
	"context"

	"github.com/jhoicas/punto-venta/internal/domain/entity"
)

// FolioRepository persiste el contador de folios. Solo debe usarse con repos atados
// a la transacción de escritura exclusiva de la venta.
type FolioRepository interface {
	Get(ctx context.Context, name string) (*entity.FolioSequence, error)
	Save(ctx context.Context, seq *entity.FolioSequence) error
}
