package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.InventoryLevelRepository = (*InventoryLevelRepo)(nil)

// InventoryLevelRepo implementación de InventoryLevelRepository sobre PostgreSQL.
type InventoryLevelRepo struct {
	q Querier
}

// NewInventoryLevelRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryLevelRepository(q Querier) *InventoryLevelRepo {
	return &InventoryLevelRepo{q: q}
}

// Get devuelve el nivel de inventario de un producto en una bodega.
// Sin fila devuelve nil sin error: ausencia = stock cero confirmado.
func (r *InventoryLevelRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryLevel, error) {
	query := `
		SELECT p.company_id, il.warehouse_id, il.product_id, il.quantity, il.updated_at
		FROM inventory_levels il
		JOIN products p ON p.id = il.product_id
		WHERE il.product_id = $1 AND il.warehouse_id = $2`
	var l entity.InventoryLevel
	err := r.q.QueryRow(ctx, query, productID, warehouseID).Scan(
		&l.CompanyID, &l.WarehouseID, &l.ProductID, &l.Quantity, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory level: %w", err)
	}
	return &l, nil
}

// ListByProduct devuelve el desglose por bodega de un producto, ordenado por
// bodega para que el lote de alertas sea determinista.
func (r *InventoryLevelRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryLevel, error) {
	query := `
		SELECT p.company_id, il.warehouse_id, il.product_id, il.quantity, il.updated_at
		FROM inventory_levels il
		JOIN products p ON p.id = il.product_id
		WHERE il.product_id = $1
		ORDER BY il.warehouse_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list inventory levels by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLevel
	for rows.Next() {
		var l entity.InventoryLevel
		if err := rows.Scan(&l.CompanyID, &l.WarehouseID, &l.ProductID, &l.Quantity, &l.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory level: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
