package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/punto-venta/internal/domain"
	"github.com/jhoicas/punto-venta/internal/domain/entity"
	"github.com/jhoicas/punto-venta/internal/domain/repository"
	"github.com/jhoicas/punto-venta/internal/domain/sale"
)

// DefaultFolioSeries nombre de la serie de folios de ventas.
const DefaultFolioSeries = "ventas"

// FolioSequencer asigna folios consecutivos a partir del contador persistido.
// Next solo es correcto con repos atados a la transacción exclusiva de la venta:
// el lock de escritura es lo que serializa lectura y actualización del contador.
type FolioSequencer struct {
	series string
	prefix string
	width  int
	now    func() time.Time
}

// NewFolioSequencer construye el secuenciador. prefix/width son los valores de una
// serie nueva; una serie existente conserva los suyos.
func NewFolioSequencer(series, prefix string, width int) *FolioSequencer {
	if series == "" {
		series = DefaultFolioSeries
	}
	if prefix == "" {
		prefix = sale.DefaultFolioPrefix
	}
	if width <= 0 {
		width = sale.DefaultFolioWidth
	}
	return &FolioSequencer{series: series, prefix: prefix, width: width, now: time.Now}
}

// Next devuelve el siguiente folio y guarda el contador en la misma transacción.
func (s *FolioSequencer) Next(ctx context.Context, folios repository.FolioRepository, salesRepo repository.SaleRepository) (sale.Folio, error) {
	seq, err := folios.Get(ctx, s.series)
	if err != nil {
		return sale.Folio{}, fmt.Errorf("folio: leer contador: %w", err)
	}
	if seq == nil {
		seq, err = s.seed(ctx, salesRepo)
		if err != nil {
			return sale.Folio{}, err
		}
	}

	next := sale.Folio{Prefix: seq.Prefix, Number: seq.LastNumber, Width: seq.Width}.Next()
	seq.LastNumber = next.Number
	seq.UpdatedAt = s.now().UTC()
	if err := folios.Save(ctx, seq); err != nil {
		return sale.Folio{}, fmt.Errorf("folio: guardar contador: %w", err)
	}
	return next, nil
}

// seed arma el contador cuando aún no existe: continúa la serie de la última venta
// creada (por fecha de creación) o empieza en cero con el prefijo configurado.
func (s *FolioSequencer) seed(ctx context.Context, salesRepo repository.SaleRepository) (*entity.FolioSequence, error) {
	seq := &entity.FolioSequence{Name: s.series, Prefix: s.prefix, Width: s.width}

	last, err := salesRepo.LastCreated(ctx)
	if err != nil {
		return nil, fmt.Errorf("folio: leer última venta: %w", err)
	}
	if last == nil {
		return seq, nil
	}

	if last.FolioPrefix != "" && last.FolioNumber > 0 {
		seq.Prefix = last.FolioPrefix
		seq.LastNumber = last.FolioNumber
		return seq, nil
	}
	parsed, err := sale.ParseFolio(last.Folio)
	if err != nil {
		return nil, fmt.Errorf("%w: no se puede continuar la serie desde el folio %q: %v", domain.ErrIntegrity, last.Folio, err)
	}
	seq.Prefix = parsed.Prefix
	seq.LastNumber = parsed.Number
	return seq, nil
}
