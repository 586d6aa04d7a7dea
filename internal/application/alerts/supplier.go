package alerts

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// SupplierResolver devuelve los proveedores elegibles de un producto en orden
// de preferencia. Lista vacía no es fault: el motor igual emite la alerta
// marcada NO_SUPPLIER, porque "necesita reorden" y "el reorden es surtible"
// son hechos separados.
type SupplierResolver struct {
	suppliers repository.SupplierRepository
}

// NewSupplierResolver construye el resolver de proveedores.
func NewSupplierResolver(suppliers repository.SupplierRepository) *SupplierResolver {
	return &SupplierResolver{suppliers: suppliers}
}

// Resolve lista los proveedores del producto ordenados por: priority rank
// ascendente (sin rank al final), menor lead time, mayor confiabilidad y,
// como último desempate determinista, ID de proveedor.
func (r *SupplierResolver) Resolve(ctx context.Context, productID string) ([]repository.SupplierWithLink, error) {
	linked, err := r.suppliers.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("proveedores de %s: %w", productID, err)
	}

	sort.SliceStable(linked, func(i, j int) bool {
		a, b := linked[i], linked[j]
		ra, rb := a.Link.PriorityRank, b.Link.PriorityRank
		switch {
		case ra != nil && rb == nil:
			return true
		case ra == nil && rb != nil:
			return false
		case ra != nil && rb != nil && *ra != *rb:
			return *ra < *rb
		}
		if a.Supplier.LeadTimeDays != b.Supplier.LeadTimeDays {
			return a.Supplier.LeadTimeDays < b.Supplier.LeadTimeDays
		}
		if !a.Supplier.ReliabilityScore.Equal(b.Supplier.ReliabilityScore) {
			return a.Supplier.ReliabilityScore.GreaterThan(b.Supplier.ReliabilityScore)
		}
		return a.Supplier.ID < b.Supplier.ID
	})
	return linked, nil
}
