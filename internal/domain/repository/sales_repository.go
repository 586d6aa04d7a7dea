package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesWindowResult resultado agregado de ventas en una ventana de tiempo.
type SalesWindowResult struct {
	UnitsSold  decimal.Decimal
	EventCount int64
	// Warehouses con al menos una venta en la ventana (para descubrir pares
	// producto-bodega activos aunque no tengan fila de inventario).
	WarehouseIDs []string
}

// SalesRepository define el puerto de lectura del historial de ventas (DIP).
// Siempre se consulta una ventana acotada [from, to), nunca el historial completo,
// para que la velocidad sea comparable entre productos de distinta antigüedad.
type SalesRepository interface {
	// GetWindow agrega unidades vendidas y número de eventos del producto en la
	// ventana. warehouseID vacío = todas las bodegas.
	GetWindow(ctx context.Context, productID, warehouseID string, from, to time.Time) (*SalesWindowResult, error)
}
