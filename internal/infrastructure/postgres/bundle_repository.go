package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.BundleRepository = (*BundleRepo)(nil)

// BundleRepo lee la composición de bundles desde bundle_items.
type BundleRepo struct {
	q Querier
}

// NewBundleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewBundleRepository(q Querier) *BundleRepo {
	return &BundleRepo{q: q}
}

// GetComponents devuelve las líneas de composición de un bundle, ordenadas por
// componente para un recorrido estable. Lista vacía = producto simple.
func (r *BundleRepo) GetComponents(ctx context.Context, productID string) ([]entity.BundleComponent, error) {
	query := `
		SELECT parent_product_id, component_product_id, qty_per_bundle
		FROM bundle_items
		WHERE parent_product_id = $1
		ORDER BY component_product_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get bundle components: %w", err)
	}
	defer rows.Close()
	var list []entity.BundleComponent
	for rows.Next() {
		var c entity.BundleComponent
		if err := rows.Scan(&c.ParentID, &c.ComponentID, &c.QtyPerBundle); err != nil {
			return nil, fmt.Errorf("scan bundle component: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
