package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryLevel representa el stock actual de un producto en una bodega.
// La ausencia de fila significa stock cero, no "desconocido". Quantity nunca
// debería ser negativa: si se observa, es corrupción de datos upstream.
type InventoryLevel struct {
	CompanyID   string
	WarehouseID string
	ProductID   string
	Quantity    decimal.Decimal
	UpdatedAt   time.Time
}
