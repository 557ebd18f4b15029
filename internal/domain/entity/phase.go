package entity

import "github.com/shopspring/decimal"

// Phase fase de un proyecto. Weight pondera el avance de sus entregables.
type Phase struct {
	ID        string
	ProjectID string
	Name      string
	Order     int
	Weight    decimal.Decimal
}
