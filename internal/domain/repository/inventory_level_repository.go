package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// InventoryLevelRepository define el puerto de lectura de stock por bodega+producto (DIP).
// Get devuelve nil (sin error) cuando no existe fila: ausencia = stock cero.
type InventoryLevelRepository interface {
	Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryLevel, error)
	// ListByProduct devuelve el desglose por bodega de un producto
	// (solo bodegas con fila de inventario).
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLevel, error)
}
