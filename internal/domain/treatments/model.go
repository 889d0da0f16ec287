package treatments

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status es el estado del tratamiento. Cerrado: un valor fuera del
// enum se rechaza en el boundary en vez de persistirse.
type Status string

const (
	StatusActive    Status = "Active"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusCompleted, StatusCancelled:
		return true
	default:
		return false
	}
}

// Treatment es una oferta de servicio facturable.
// Name es clave natural; la unicidad se compara case-insensitive.
type Treatment struct {
	ID          string
	Name        string
	Description string
	Price       decimal.Decimal
	Status      Status
	ClientID    string // dueño opcional, del modelo original

	CreatedAt time.Time
	UpdatedAt time.Time
}
