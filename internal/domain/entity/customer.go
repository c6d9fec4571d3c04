package entity

import "time"

// Customer representa un cliente (alumno) que puede referenciarse desde una venta.
type Customer struct {
	ID         int64
	Enrollment string // matrícula, única
	Name       string
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
