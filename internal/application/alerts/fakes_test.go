package alerts

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de construcción
// ──────────────────────────────────────────────────────────────────────────────

func dec(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic("decimal inválido en test: " + v)
	}
	return d
}

func decPtr(v string) *decimal.Decimal {
	d := dec(v)
	return &d
}

func intPtr(v int) *int { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Repositorios en memoria (sin BD; el motor solo ve los puertos)
// ──────────────────────────────────────────────────────────────────────────────

type fakeCompanyRepo struct {
	companies map[string]*entity.Company
}

func (r *fakeCompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.companies[c.ID] = c
	return nil
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*entity.Company, error) {
	return r.companies[id], nil
}

type fakeProductRepo struct {
	products []*entity.Product
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) GetByCompanyAndSKU(_ context.Context, companyID, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.CompanyID == companyID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) ListByCompany(_ context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	all, _ := r.ListActiveByCompany(context.Background(), companyID)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r *fakeProductRepo) ListActiveByCompany(_ context.Context, companyID string) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.CompanyID == companyID && p.Status != "inactive" {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeLevelRepo simula la capa de inventario. failures > 0 hace que las
// primeras lecturas devuelvan context.DeadlineExceeded (driver con timeout),
// para ejercitar el reintento del motor.
type fakeLevelRepo struct {
	mu       sync.Mutex
	levels   map[string]map[string]*entity.InventoryLevel // productID → warehouseID
	failures int
}

func (r *fakeLevelRepo) failNext() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return true
	}
	return false
}

func (r *fakeLevelRepo) Get(_ context.Context, productID, warehouseID string) (*entity.InventoryLevel, error) {
	if r.failNext() {
		return nil, context.DeadlineExceeded
	}
	byWh, ok := r.levels[productID]
	if !ok {
		return nil, nil
	}
	return byWh[warehouseID], nil
}

func (r *fakeLevelRepo) ListByProduct(_ context.Context, productID string) ([]*entity.InventoryLevel, error) {
	if r.failNext() {
		return nil, context.DeadlineExceeded
	}
	byWh := r.levels[productID]
	whIDs := make([]string, 0, len(byWh))
	for wh := range byWh {
		whIDs = append(whIDs, wh)
	}
	sort.Strings(whIDs)
	out := make([]*entity.InventoryLevel, 0, len(whIDs))
	for _, wh := range whIDs {
		out = append(out, byWh[wh])
	}
	return out, nil
}

func (r *fakeLevelRepo) set(productID, warehouseID string, qty decimal.Decimal, updatedAt time.Time) {
	if r.levels[productID] == nil {
		r.levels[productID] = map[string]*entity.InventoryLevel{}
	}
	r.levels[productID][warehouseID] = &entity.InventoryLevel{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Quantity:    qty,
		UpdatedAt:   updatedAt,
	}
}

type fakeSalesRepo struct {
	mu       sync.Mutex
	events   []entity.SaleEvent
	failures int
}

func (r *fakeSalesRepo) GetWindow(_ context.Context, productID, warehouseID string, from, to time.Time) (*repository.SalesWindowResult, error) {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return nil, context.DeadlineExceeded
	}
	r.mu.Unlock()

	result := &repository.SalesWindowResult{UnitsSold: decimal.Zero}
	seen := map[string]bool{}
	for _, ev := range r.events {
		if ev.ProductID != productID {
			continue
		}
		if warehouseID != "" && ev.WarehouseID != warehouseID {
			continue
		}
		if ev.OccurredAt.Before(from) || !ev.OccurredAt.Before(to) {
			continue
		}
		result.UnitsSold = result.UnitsSold.Add(ev.Quantity)
		result.EventCount++
		if !seen[ev.WarehouseID] {
			seen[ev.WarehouseID] = true
			result.WarehouseIDs = append(result.WarehouseIDs, ev.WarehouseID)
		}
	}
	sort.Strings(result.WarehouseIDs)
	return result, nil
}

type fakeSupplierRepo struct {
	links map[string][]repository.SupplierWithLink
}

func (r *fakeSupplierRepo) ListByProduct(_ context.Context, productID string) ([]repository.SupplierWithLink, error) {
	// Copia desordenada a propósito: el ordenamiento es del resolver, no del repo.
	out := make([]repository.SupplierWithLink, len(r.links[productID]))
	copy(out, r.links[productID])
	return out, nil
}

type fakeBundleRepo struct {
	components map[string][]entity.BundleComponent
}

func (r *fakeBundleRepo) GetComponents(_ context.Context, productID string) ([]entity.BundleComponent, error) {
	return r.components[productID], nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Entorno de prueba
// ──────────────────────────────────────────────────────────────────────────────

const testCompanyID = "co-1"

type testEnv struct {
	companies *fakeCompanyRepo
	products  *fakeProductRepo
	levels    *fakeLevelRepo
	sales     *fakeSalesRepo
	suppliers *fakeSupplierRepo
	bundles   *fakeBundleRepo
	engine    *Engine
}

// newTestEnv arma un motor sobre repos en memoria con una empresa sin umbral
// por defecto (los tests lo fijan cuando lo necesitan).
func newTestEnv(cfg Config) *testEnv {
	env := &testEnv{
		companies: &fakeCompanyRepo{companies: map[string]*entity.Company{}},
		products:  &fakeProductRepo{},
		levels:    &fakeLevelRepo{levels: map[string]map[string]*entity.InventoryLevel{}},
		sales:     &fakeSalesRepo{},
		suppliers: &fakeSupplierRepo{links: map[string][]repository.SupplierWithLink{}},
		bundles:   &fakeBundleRepo{components: map[string][]entity.BundleComponent{}},
	}
	env.companies.companies[testCompanyID] = &entity.Company{ID: testCompanyID, Name: "Test SAS", Status: "active"}
	env.engine = NewEngine(cfg, Repos{
		Companies: env.companies,
		Products:  env.products,
		Levels:    env.levels,
		Sales:     env.sales,
		Suppliers: env.suppliers,
		Bundles:   env.bundles,
	}, nil)
	return env
}

func (env *testEnv) addProduct(id, sku string, threshold *decimal.Decimal, priority int) *entity.Product {
	p := &entity.Product{
		ID:               id,
		CompanyID:        testCompanyID,
		SKU:              sku,
		Name:             "Producto " + sku,
		ReorderThreshold: threshold,
		Priority:         priority,
		Status:           "active",
	}
	env.products.products = append(env.products.products, p)
	return p
}

func (env *testEnv) setStock(productID, warehouseID, qty string) {
	env.levels.set(productID, warehouseID, dec(qty), time.Now())
}

// addSales reparte qtyPerDay unidades diarias durante days días hacia atrás.
// Los eventos van una hora dentro de cada día para que el más viejo quede
// dentro de la ventana [now-days, now) y no en el borde excluido.
func (env *testEnv) addSales(productID, warehouseID string, qtyPerDay string, days int) {
	now := time.Now()
	for i := 0; i < days; i++ {
		env.sales.events = append(env.sales.events, entity.SaleEvent{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Quantity:    dec(qtyPerDay),
			OccurredAt:  now.Add(-time.Duration(i)*24*time.Hour - time.Hour),
		})
	}
}

func (env *testEnv) addSupplier(productID, supplierID, name string, leadDays int, reliability string, rank *int) {
	env.suppliers.links[productID] = append(env.suppliers.links[productID], repository.SupplierWithLink{
		Supplier: entity.Supplier{
			ID:               supplierID,
			CompanyID:        testCompanyID,
			Name:             name,
			LeadTimeDays:     leadDays,
			ReliabilityScore: dec(reliability),
		},
		Link: entity.ProductSupplier{SupplierID: supplierID, ProductID: productID, PriorityRank: rank},
	})
}

func (env *testEnv) addComponent(parentID, componentID, qtyPerBundle string) {
	env.bundles.components[parentID] = append(env.bundles.components[parentID], entity.BundleComponent{
		ParentID:     parentID,
		ComponentID:  componentID,
		QtyPerBundle: dec(qtyPerBundle),
	})
}

// findAlert busca la alerta de un par (producto, bodega) en el resultado.
func findAlert(result *BatchResult, productID, warehouseID string) *entity.Alert {
	for i := range result.Alerts {
		a := &result.Alerts[i]
		if a.ProductID == productID && a.WarehouseID == warehouseID {
			return a
		}
	}
	return nil
}
