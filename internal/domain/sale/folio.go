package sale

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/jhoicas/punto-venta/internal/domain"
)

// Valores por defecto del folio: F0001, F0002, ...
const (
	DefaultFolioPrefix = "F"
	DefaultFolioWidth  = 4
)

// Folio representación estructurada de un folio: prefijo + consecutivo con ancho fijo.
type Folio struct {
	Prefix string
	Number int64
	Width  int
}

// String renderiza el folio con ceros a la izquierda; el ancho crece si el número no cabe.
func (f Folio) String() string {
	width := f.Width
	if width <= 0 {
		width = DefaultFolioWidth
	}
	return fmt.Sprintf("%s%0*d", f.Prefix, width, f.Number)
}

// Next devuelve el folio siguiente de la misma serie.
func (f Folio) Next() Folio {
	return Folio{Prefix: f.Prefix, Number: f.Number + 1, Width: f.Width}
}

// ParseFolio separa un folio existente en prefijo (caracteres no numéricos iniciales)
// y sufijo numérico. Sin prefijo se asume "F". Solo se usa para sembrar el contador
// desde ventas previas a folio_sequences.
func ParseFolio(s string) (Folio, error) {
	s = strings.TrimSpace(s)
	i := strings.IndexFunc(s, unicode.IsDigit)
	if i < 0 {
		return Folio{}, fmt.Errorf("%w: folio %q sin consecutivo numérico", domain.ErrInvalidInput, s)
	}
	prefix, digits := s[:i], s[i:]
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return Folio{}, fmt.Errorf("%w: folio %q con caracteres después del consecutivo", domain.ErrInvalidInput, s)
		}
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Folio{}, fmt.Errorf("%w: folio %q: %v", domain.ErrInvalidInput, s, err)
	}
	if prefix == "" {
		prefix = DefaultFolioPrefix
	}
	return Folio{Prefix: prefix, Number: n, Width: len(digits)}, nil
}
