package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo lee el historial de ventas (append-only) sobre PostgreSQL.
// Solo agrega ventanas acotadas; nunca trae eventos fila a fila.
type SalesRepo struct {
	q Querier
}

// NewSalesRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// GetWindow agrega unidades vendidas y eventos del producto en [from, to).
// warehouseID vacío = todas las bodegas; en ese caso también devuelve las
// bodegas con al menos una venta en la ventana.
func (r *SalesRepo) GetWindow(ctx context.Context, productID, warehouseID string, from, to time.Time) (*repository.SalesWindowResult, error) {
	var (
		query string
		args  []any
	)
	if warehouseID != "" {
		query = `
			SELECT COALESCE(SUM(quantity), 0), COUNT(*), COALESCE(array_agg(DISTINCT warehouse_id) FILTER (WHERE warehouse_id IS NOT NULL), '{}')
			FROM sales_events
			WHERE product_id = $1 AND warehouse_id = $2
			  AND occurred_at >= $3 AND occurred_at < $4`
		args = []any{productID, warehouseID, from, to}
	} else {
		query = `
			SELECT COALESCE(SUM(quantity), 0), COUNT(*), COALESCE(array_agg(DISTINCT warehouse_id) FILTER (WHERE warehouse_id IS NOT NULL), '{}')
			FROM sales_events
			WHERE product_id = $1
			  AND occurred_at >= $2 AND occurred_at < $3`
		args = []any{productID, from, to}
	}

	var result repository.SalesWindowResult
	err := r.q.QueryRow(ctx, query, args...).Scan(&result.UnitsSold, &result.EventCount, &result.WarehouseIDs)
	if err != nil {
		return nil, fmt.Errorf("get sales window: %w", err)
	}
	return &result, nil
}
