package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleEvent representa una venta registrada (append-only, ordenada por fecha).
// El motor de alertas solo lee una ventana reciente, nunca el historial completo.
type SaleEvent struct {
	ID          string
	CompanyID   string
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	OccurredAt  time.Time
}
