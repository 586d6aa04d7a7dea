package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Company representa una organización/tenant del sistema (multi-tenant).
// DefaultReorderThreshold aplica a los productos sin umbral propio; si también
// es nil, el producto no es resoluble y el motor de alertas lo reporta como fault.
type Company struct {
	ID                      string
	Name                    string
	Email                   string
	DefaultReorderThreshold *decimal.Decimal
	Status                  string // active, suspended, inactive
	CreatedAt               time.Time
	UpdatedAt               time.Time
}
