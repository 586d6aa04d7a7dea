package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo lee los proveedores vinculados a productos sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// ListByProduct devuelve los proveedores vinculados al producto con los
// metadatos del vínculo. El orden de preferencia lo decide la aplicación,
// no la consulta.
func (r *SupplierRepo) ListByProduct(ctx context.Context, productID string) ([]repository.SupplierWithLink, error) {
	query := `
		SELECT s.id, s.company_id, s.name, s.contact_email, s.lead_time_days, s.reliability_score,
		       s.created_at, s.updated_at,
		       ps.supplier_id, ps.product_id, ps.priority_rank, ps.unit_cost
		FROM product_suppliers ps
		JOIN suppliers s ON s.id = ps.supplier_id
		WHERE ps.product_id = $1`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list suppliers by product: %w", err)
	}
	defer rows.Close()
	var list []repository.SupplierWithLink
	for rows.Next() {
		var sw repository.SupplierWithLink
		if err := rows.Scan(
			&sw.Supplier.ID, &sw.Supplier.CompanyID, &sw.Supplier.Name, &sw.Supplier.ContactEmail,
			&sw.Supplier.LeadTimeDays, &sw.Supplier.ReliabilityScore,
			&sw.Supplier.CreatedAt, &sw.Supplier.UpdatedAt,
			&sw.Link.SupplierID, &sw.Link.ProductID, &sw.Link.PriorityRank, &sw.Link.UnitCost,
		); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, sw)
	}
	return list, rows.Err()
}
