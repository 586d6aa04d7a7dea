package alerts

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// BundleResolver deriva la disponibilidad de un bundle a partir del stock de
// sus componentes: min sobre componentes de floor(on_hand / qty_per_bundle).
// Un bundle no tiene stock propio. Soporta bundle-de-bundles con detección de
// ciclos por visited-set: cualquier revisita es corrupción de datos, no un
// desbordamiento de pila.
type BundleResolver struct {
	bundles    repository.BundleRepository
	levels     repository.InventoryLevelRepository
	staleAfter time.Duration
	now        func() time.Time
}

// NewBundleResolver construye el resolver de bundles. staleAfter usa el mismo
// umbral de frescura que el lector de snapshots directos.
func NewBundleResolver(bundles repository.BundleRepository, levels repository.InventoryLevelRepository, staleAfter time.Duration) *BundleResolver {
	return &BundleResolver{bundles: bundles, levels: levels, staleAfter: staleAfter, now: time.Now}
}

// GetComponents expone la composición directa del producto (vacía para un
// producto simple). El motor decide por la composición, no por el flag IsBundle.
func (r *BundleResolver) GetComponents(ctx context.Context, productID string) ([]entity.BundleComponent, error) {
	return r.bundles.GetComponents(ctx, productID)
}

// Availability calcula cuántos bundles completos pueden armarse con el stock
// actual. warehouseID vacío = stock total de todas las bodegas.
// Para un producto sin componentes devuelve su on-hand directo.
// El segundo valor indica si alguna fila de inventario hoja que contribuyó al
// cálculo supera el umbral de frescura: el dato viejo degrada confianza pero
// no se descarta.
func (r *BundleResolver) Availability(ctx context.Context, productID, warehouseID string) (decimal.Decimal, bool, error) {
	return r.availability(ctx, productID, warehouseID, map[string]bool{})
}

func (r *BundleResolver) availability(ctx context.Context, productID, warehouseID string, visited map[string]bool) (decimal.Decimal, bool, error) {
	if visited[productID] {
		return decimal.Zero, false, fmt.Errorf("ciclo en composición de bundle (producto %s): %w", productID, domain.ErrDataIntegrity)
	}
	visited[productID] = true
	// Visited por rama: un mismo componente en dos ramas distintas no es ciclo.
	defer delete(visited, productID)

	components, err := r.bundles.GetComponents(ctx, productID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("componentes de %s: %w", productID, err)
	}
	if len(components) == 0 {
		return r.onHand(ctx, productID, warehouseID)
	}

	var available decimal.Decimal
	stale := false
	for i, comp := range components {
		if !comp.QtyPerBundle.IsPositive() {
			return decimal.Zero, false, fmt.Errorf(
				"qty_per_bundle inválida (%s) en bundle %s componente %s: %w",
				comp.QtyPerBundle.String(), productID, comp.ComponentID, domain.ErrDataIntegrity,
			)
		}
		compAvailable, compStale, err := r.availability(ctx, comp.ComponentID, warehouseID, visited)
		if err != nil {
			return decimal.Zero, false, err
		}
		stale = stale || compStale
		buildable := compAvailable.Div(comp.QtyPerBundle).Floor()
		if i == 0 || buildable.LessThan(available) {
			available = buildable
		}
	}
	return available, stale, nil
}

// WarehouseIDs devuelve las bodegas con fila de inventario de algún componente
// hoja del bundle (recursivo), ordenadas para un recorrido determinista.
func (r *BundleResolver) WarehouseIDs(ctx context.Context, productID string) ([]string, error) {
	seen := map[string]bool{}
	if err := r.collectWarehouses(ctx, productID, map[string]bool{}, seen); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *BundleResolver) collectWarehouses(ctx context.Context, productID string, visited, seen map[string]bool) error {
	if visited[productID] {
		return fmt.Errorf("ciclo en composición de bundle (producto %s): %w", productID, domain.ErrDataIntegrity)
	}
	visited[productID] = true
	defer delete(visited, productID)

	components, err := r.bundles.GetComponents(ctx, productID)
	if err != nil {
		return fmt.Errorf("componentes de %s: %w", productID, err)
	}
	if len(components) == 0 {
		levels, err := r.levels.ListByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("desglose de inventario %s: %w", productID, err)
		}
		for _, level := range levels {
			seen[level.WarehouseID] = true
		}
		return nil
	}
	for _, comp := range components {
		if err := r.collectWarehouses(ctx, comp.ComponentID, visited, seen); err != nil {
			return err
		}
	}
	return nil
}

// onHand stock directo de un producto hoja con su marca de frescura.
// Negativo = fault de integridad.
func (r *BundleResolver) onHand(ctx context.Context, productID, warehouseID string) (decimal.Decimal, bool, error) {
	if warehouseID != "" {
		level, err := r.levels.Get(ctx, productID, warehouseID)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("leer inventario %s/%s: %w", productID, warehouseID, err)
		}
		if level == nil {
			return decimal.Zero, false, nil
		}
		if level.Quantity.IsNegative() {
			return decimal.Zero, false, fmt.Errorf("stock negativo para %s en bodega %s: %w", productID, warehouseID, domain.ErrDataIntegrity)
		}
		return level.Quantity, r.isStale(level.UpdatedAt), nil
	}
	levels, err := r.levels.ListByProduct(ctx, productID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("desglose de inventario %s: %w", productID, err)
	}
	total := decimal.Zero
	stale := false
	for _, level := range levels {
		if level.Quantity.IsNegative() {
			return decimal.Zero, false, fmt.Errorf("stock negativo para %s en bodega %s: %w", productID, level.WarehouseID, domain.ErrDataIntegrity)
		}
		total = total.Add(level.Quantity)
		stale = stale || r.isStale(level.UpdatedAt)
	}
	return total, stale, nil
}

func (r *BundleResolver) isStale(updatedAt time.Time) bool {
	return !updatedAt.IsZero() && r.now().Sub(updatedAt) > r.staleAfter
}
