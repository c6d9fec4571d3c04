package entity

import "time"

// Seller representa un vendedor / cajero.
type Seller struct {
	ID        int64
	Code      string // código de empleado, único
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
