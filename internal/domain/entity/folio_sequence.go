package entity

import "time"

// FolioSequence contador persistido de folios (prefijo, ancho y último número asignado).
// Se lee y actualiza dentro de la misma transacción que inserta la venta.
type FolioSequence struct {
	Name       string
	Prefix     string
	Width      int
	LastNumber int64
	UpdatedAt  time.Time
}
