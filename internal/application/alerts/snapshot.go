package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// StockSnapshot cantidad disponible de un producto en una bodega, con su
// frescura. Stale indica que el dato supera el umbral configurado; el motor
// lo marca pero nunca descarta el registro.
type StockSnapshot struct {
	WarehouseID string
	OnHand      decimal.Decimal
	LastUpdated time.Time
	Stale       bool
}

// SnapshotReader lee el stock actual por (producto, bodega). Solo lectura.
type SnapshotReader struct {
	levels     repository.InventoryLevelRepository
	staleAfter time.Duration
	now        func() time.Time
}

// NewSnapshotReader construye el lector de snapshots de inventario.
func NewSnapshotReader(levels repository.InventoryLevelRepository, staleAfter time.Duration) *SnapshotReader {
	return &SnapshotReader{levels: levels, staleAfter: staleAfter, now: time.Now}
}

// Read devuelve el snapshot de un producto. Con warehouseID devuelve esa única
// bodega (fila ausente = stock cero confirmado, no staleness); sin filtro
// devuelve el desglose de todas las bodegas con fila de inventario.
// Una cantidad negativa es corrupción upstream y se reporta como
// ErrDataIntegrity, nunca se trata como cero.
func (r *SnapshotReader) Read(ctx context.Context, productID, warehouseID string) ([]StockSnapshot, error) {
	if warehouseID != "" {
		level, err := r.levels.Get(ctx, productID, warehouseID)
		if err != nil {
			return nil, fmt.Errorf("leer inventario %s/%s: %w", productID, warehouseID, err)
		}
		if level == nil {
			return []StockSnapshot{{WarehouseID: warehouseID, OnHand: decimal.Zero}}, nil
		}
		snap, err := r.toSnapshot(productID, level.WarehouseID, level.Quantity, level.UpdatedAt)
		if err != nil {
			return nil, err
		}
		return []StockSnapshot{snap}, nil
	}

	levels, err := r.levels.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("desglose de inventario %s: %w", productID, err)
	}
	snapshots := make([]StockSnapshot, 0, len(levels))
	for _, level := range levels {
		snap, err := r.toSnapshot(productID, level.WarehouseID, level.Quantity, level.UpdatedAt)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

func (r *SnapshotReader) toSnapshot(productID, warehouseID string, qty decimal.Decimal, updatedAt time.Time) (StockSnapshot, error) {
	if qty.IsNegative() {
		return StockSnapshot{}, fmt.Errorf(
			"stock negativo (%s) para %s en bodega %s: %w",
			qty.String(), productID, warehouseID, domain.ErrDataIntegrity,
		)
	}
	stale := !updatedAt.IsZero() && r.now().Sub(updatedAt) > r.staleAfter
	return StockSnapshot{
		WarehouseID: warehouseID,
		OnHand:      qty,
		LastUpdated: updatedAt,
		Stale:       stale,
	}, nil
}
