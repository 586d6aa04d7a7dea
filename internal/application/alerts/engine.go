package alerts

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/pkg/metrics"
)

// Filters acota el cálculo de un lote de alertas.
type Filters struct {
	// WarehouseID limita la evaluación a una sola bodega (vacío = todas).
	WarehouseID string
	// IncludeAggregate emite además una alerta "ALL" por producto sumando el
	// stock de todas las bodegas. Coexiste con las alertas por bodega: un
	// superávit global puede enmascarar el quiebre de una bodega puntual.
	IncludeAggregate bool
}

// BatchResult resultado de un lote: alertas ordenadas por urgencia y faults
// por producto. Éxito parcial: el fault de un producto nunca suprime las
// alertas de los demás.
type BatchResult struct {
	Alerts []entity.Alert `json:"alerts"`
	Faults []ProductFault `json:"faults"`
}

// Repos puertos de datos que consume el motor (todos de solo lectura).
type Repos struct {
	Companies repository.CompanyRepository
	Products  repository.ProductRepository
	Levels    repository.InventoryLevelRepository
	Sales     repository.SalesRepository
	Suppliers repository.SupplierRepository
	Bundles   repository.BundleRepository
}

// Engine es el motor de decisión de alertas de bajo stock: combina umbral
// efectivo, stock por bodega, velocidad de ventas y lead time de proveedores
// en una lista ordenada y explicable de alertas de reorden.
//
// La regla central es doble: alerta si on_hand <= umbral, O si con la
// velocidad actual el stock se agota antes de que llegue un pedido al mejor
// proveedor (days_of_supply < lead_time). El chequeo estático solo es
// insuficiente cuando se conocen velocidad y lead time.
//
// Stateless entre invocaciones: cada lote recalcula desde datos actuales,
// sin caché, para no servir alertas viejas.
type Engine struct {
	cfg       Config
	met       *metrics.AlertMetrics
	companies repository.CompanyRepository
	products  repository.ProductRepository
	snapshots *SnapshotReader
	velocity  *VelocityEstimator
	suppliers *SupplierResolver
	bundles   *BundleResolver
}

// NewEngine construye el motor con sus cuatro lectores hoja.
// met puede ser nil (tests sin registro de métricas).
func NewEngine(cfg Config, repos Repos, met *metrics.AlertMetrics) *Engine {
	cfg = cfg.withDefaults()
	return &Engine{
		cfg:       cfg,
		met:       met,
		companies: repos.Companies,
		products:  repos.Products,
		snapshots: NewSnapshotReader(repos.Levels, cfg.StaleAfter),
		velocity:  NewVelocityEstimator(repos.Sales, cfg.WindowDays),
		suppliers: NewSupplierResolver(repos.Suppliers),
		bundles:   NewBundleResolver(repos.Bundles, repos.Levels, cfg.StaleAfter),
	}
}

// ComputeAlerts evalúa todos los productos activos de la empresa y devuelve
// las alertas ordenadas por urgencia (Severity 1 = más urgente) junto con los
// faults por producto. Solo una condición fuera del alcance de un producto
// (empresa no resoluble, listado de productos ilegible) aborta el lote.
func (e *Engine) ComputeAlerts(ctx context.Context, companyID string, filters Filters) (*BatchResult, error) {
	start := time.Now()

	var company *entity.Company
	if err := e.leafRead(ctx, "empresa", func(c context.Context) error {
		var err error
		company, err = e.companies.GetByID(c, companyID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("resolver empresa %s: %w", companyID, err)
	}
	if company == nil {
		return nil, domain.ErrCompanyNotFound
	}

	var products []*entity.Product
	if err := e.leafRead(ctx, "productos", func(c context.Context) error {
		var err error
		products, err = e.products.ListActiveByCompany(c, companyID)
		return err
	}); err != nil {
		return nil, fmt.Errorf("listar productos de %s: %w", companyID, err)
	}

	// Evaluación por producto en paralelo, acotada por semáforo. Cada goroutine
	// escribe solo su propio slot: sin acumulador mutable compartido.
	type slot struct {
		alerts []scoredAlert
		fault  *ProductFault
	}
	slots := make([]slot, len(products))
	sem := make(chan struct{}, e.cfg.MaxWorkers)
	var wg sync.WaitGroup
	for i, product := range products {
		wg.Add(1)
		go func(i int, product *entity.Product) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			alerts, fault := e.evaluateProduct(ctx, product, company, filters)
			slots[i] = slot{alerts: alerts, fault: fault}
		}(i, product)
	}
	wg.Wait()

	result := &BatchResult{Alerts: []entity.Alert{}, Faults: []ProductFault{}}
	var scored []scoredAlert
	for _, s := range slots {
		scored = append(scored, s.alerts...)
		if s.fault != nil {
			result.Faults = append(result.Faults, *s.fault)
		}
	}
	sortAlerts(scored)
	for i := range scored {
		alert := scored[i].alert
		alert.Severity = i + 1
		result.Alerts = append(result.Alerts, alert)
	}

	elapsed := time.Since(start)
	if e.met != nil {
		e.met.BatchesTotal.Inc()
		e.met.ProductsEvaluated.Add(float64(len(products)))
		e.met.AlertsEmitted.Add(float64(len(result.Alerts)))
		for _, f := range result.Faults {
			e.met.FaultsTotal.WithLabelValues(f.Kind).Inc()
		}
		e.met.BatchDuration.Observe(elapsed.Seconds())
	}
	log.Info().
		Str("company_id", companyID).
		Int("products", len(products)).
		Int("alerts", len(result.Alerts)).
		Int("faults", len(result.Faults)).
		Dur("elapsed", elapsed).
		Msg("lote de alertas calculado")

	return result, nil
}

// scoredAlert alerta con sus llaves de ordenamiento (no viajan en la salida).
type scoredAlert struct {
	alert    entity.Alert
	priority int
	ratio    decimal.Decimal // on_hand/umbral, para alertas sin days_of_supply
}

// evaluateProduct evalúa un producto contra todas sus bodegas (o la filtrada).
// Devuelve cero o más alertas, o un fault acotado al producto.
func (e *Engine) evaluateProduct(ctx context.Context, product *entity.Product, company *entity.Company, filters Filters) ([]scoredAlert, *ProductFault) {
	threshold, err := ResolveThreshold(product, company.DefaultReorderThreshold)
	if err != nil {
		return nil, e.newFault(product, err)
	}

	var suppliers []repository.SupplierWithLink
	if err := e.leafRead(ctx, "proveedores", func(c context.Context) error {
		var err error
		suppliers, err = e.suppliers.Resolve(c, product.ID)
		return err
	}); err != nil {
		return nil, e.newFault(product, err)
	}

	// La composición precomputada manda sobre el flag IsBundle: datos viejos
	// pueden traer el flag desactualizado.
	var components []entity.BundleComponent
	if err := e.leafRead(ctx, "componentes", func(c context.Context) error {
		var err error
		components, err = e.bundles.GetComponents(c, product.ID)
		return err
	}); err != nil {
		return nil, e.newFault(product, err)
	}
	isBundle := len(components) > 0

	// Velocidad total (todas las bodegas): alimenta el agregado y descubre
	// bodegas con ventas recientes aunque no tengan fila de inventario.
	var totalVel *VelocityResult
	if err := e.leafRead(ctx, "ventas", func(c context.Context) error {
		var err error
		totalVel, err = e.velocity.Estimate(c, product.ID, "")
		return err
	}); err != nil {
		return nil, e.newFault(product, err)
	}

	onHandByWh := map[string]decimal.Decimal{}
	staleByWh := map[string]bool{}
	var universe []string

	if isBundle {
		if filters.WarehouseID != "" {
			universe = []string{filters.WarehouseID}
		} else {
			var whIDs []string
			if err := e.leafRead(ctx, "bodegas de bundle", func(c context.Context) error {
				var err error
				whIDs, err = e.bundles.WarehouseIDs(c, product.ID)
				return err
			}); err != nil {
				return nil, e.newFault(product, err)
			}
			universe = mergeWarehouses(whIDs, totalVel.WarehouseIDs)
		}
		for _, wh := range universe {
			var available decimal.Decimal
			var stale bool
			if err := e.leafRead(ctx, "disponibilidad de bundle", func(c context.Context) error {
				var err error
				available, stale, err = e.bundles.Availability(c, product.ID, wh)
				return err
			}); err != nil {
				return nil, e.newFault(product, err)
			}
			onHandByWh[wh] = available
			staleByWh[wh] = stale
		}
	} else {
		var snaps []StockSnapshot
		if err := e.leafRead(ctx, "inventario", func(c context.Context) error {
			var err error
			snaps, err = e.snapshots.Read(c, product.ID, filters.WarehouseID)
			return err
		}); err != nil {
			return nil, e.newFault(product, err)
		}
		whIDs := make([]string, 0, len(snaps))
		for _, snap := range snaps {
			whIDs = append(whIDs, snap.WarehouseID)
			onHandByWh[snap.WarehouseID] = snap.OnHand
			staleByWh[snap.WarehouseID] = snap.Stale
		}
		if filters.WarehouseID != "" {
			universe = whIDs
		} else {
			// Bodega con ventas pero sin fila de inventario = stock cero conocido.
			universe = mergeWarehouses(whIDs, totalVel.WarehouseIDs)
		}
	}

	var scored []scoredAlert
	for _, wh := range universe {
		var vel *VelocityResult
		if err := e.leafRead(ctx, "ventas", func(c context.Context) error {
			var err error
			vel, err = e.velocity.Estimate(c, product.ID, wh)
			return err
		}); err != nil {
			return nil, e.newFault(product, err)
		}
		onHand, ok := onHandByWh[wh]
		if !ok {
			onHand = decimal.Zero
		}
		if alert := e.buildAlert(product, wh, onHand, threshold, vel, suppliers, staleByWh[wh], isBundle); alert != nil {
			scored = append(scored, *alert)
		}
	}

	if filters.WarehouseID == "" && filters.IncludeAggregate {
		var total decimal.Decimal
		anyStale := false
		if isBundle {
			if err := e.leafRead(ctx, "disponibilidad de bundle", func(c context.Context) error {
				var err error
				total, anyStale, err = e.bundles.Availability(c, product.ID, "")
				return err
			}); err != nil {
				return nil, e.newFault(product, err)
			}
		} else {
			for wh, onHand := range onHandByWh {
				total = total.Add(onHand)
				anyStale = anyStale || staleByWh[wh]
			}
		}
		if alert := e.buildAlert(product, entity.WarehouseAll, total, threshold, totalVel, suppliers, anyStale, isBundle); alert != nil {
			scored = append(scored, *alert)
		}
	}

	return scored, nil
}

// buildAlert aplica la regla de decisión a un par (producto, bodega).
// Devuelve nil si no hay alerta: on_hand > umbral y (sin velocidad o el stock
// alcanza hasta el lead time del mejor proveedor).
func (e *Engine) buildAlert(
	product *entity.Product,
	warehouseID string,
	onHand, threshold decimal.Decimal,
	vel *VelocityResult,
	suppliers []repository.SupplierWithLink,
	stale, isBundle bool,
) *scoredAlert {
	lowStock := onHand.LessThanOrEqual(threshold)

	var velocityPtr, daysPtr *decimal.Decimal
	velocityRisk := false
	if !vel.NoSalesData {
		velocity := vel.Velocity.Round(4)
		velocityPtr = &velocity
		if vel.Velocity.IsPositive() {
			// days_of_supply solo con velocidad > 0: nunca división por cero.
			days := onHand.Div(vel.Velocity).Round(2)
			daysPtr = &days
			if len(suppliers) > 0 {
				lead := decimal.NewFromInt(int64(suppliers[0].Supplier.LeadTimeDays))
				velocityRisk = days.LessThan(lead)
			}
		}
	}
	if !lowStock && !velocityRisk {
		return nil
	}

	reasons := make([]string, 0, 4)
	if lowStock {
		reasons = append(reasons, entity.ReasonLowStock)
	}
	if velocityRisk {
		reasons = append(reasons, entity.ReasonVelocityRisk)
	}
	if len(suppliers) == 0 {
		reasons = append(reasons, entity.ReasonNoSupplier)
	}
	if stale {
		reasons = append(reasons, entity.ReasonStaleData)
	}
	if isBundle {
		reasons = append(reasons, entity.ReasonBundleDerived)
	}

	alert := entity.Alert{
		ProductID:    product.ID,
		SKU:          product.SKU,
		ProductName:  product.Name,
		WarehouseID:  warehouseID,
		OnHand:       onHand,
		Threshold:    threshold,
		Velocity:     velocityPtr,
		DaysOfSupply: daysPtr,
		ReasonCodes:  reasons,
	}
	if len(suppliers) > 0 {
		best := suppliers[0].Supplier
		id := best.ID
		alert.RecommendedSupplierID = &id
		alert.RecommendedSupplier = best.Name
	}

	ratio := decimal.Zero
	if threshold.IsPositive() {
		ratio = onHand.Div(threshold)
	}
	return &scoredAlert{alert: alert, priority: product.Priority, ratio: ratio}
}

// sortAlerts ordena por urgencia descendente: menor days_of_supply primero;
// las alertas sin days_of_supply van después, ordenadas por on_hand/umbral
// ascendente. Desempates: prioridad de producto, ID de producto, bodega.
// El orden es determinista: dos corridas sobre la misma entrada coinciden.
func sortAlerts(scored []scoredAlert) {
	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		aDef, bDef := a.alert.DaysOfSupply != nil, b.alert.DaysOfSupply != nil
		if aDef != bDef {
			return aDef
		}
		if aDef {
			if !a.alert.DaysOfSupply.Equal(*b.alert.DaysOfSupply) {
				return a.alert.DaysOfSupply.LessThan(*b.alert.DaysOfSupply)
			}
		} else if !a.ratio.Equal(b.ratio) {
			return a.ratio.LessThan(b.ratio)
		}
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		if a.alert.ProductID != b.alert.ProductID {
			return a.alert.ProductID < b.alert.ProductID
		}
		return a.alert.WarehouseID < b.alert.WarehouseID
	})
}

// newFault clasifica el error y lo registra. Los faults de integridad se
// loguean a nivel error: indican corrupción upstream y deben resaltar.
func (e *Engine) newFault(product *entity.Product, err error) *ProductFault {
	kind := classifyFault(err)
	evt := log.Warn()
	if kind == FaultDataIntegrity {
		evt = log.Error()
	}
	evt.Str("product_id", product.ID).
		Str("sku", product.SKU).
		Str("kind", kind).
		Err(err).
		Msg("fault evaluando producto")
	return &ProductFault{ProductID: product.ID, SKU: product.SKU, Kind: kind, Detail: err.Error()}
}

// leafRead ejecuta una lectura hoja con timeout propio y un único reintento
// con backoff cuando la lectura vence. Vencida dos veces se convierte en
// ErrUpstreamTimeout del producto; nunca bloquea productos no relacionados.
func (e *Engine) leafRead(ctx context.Context, op string, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(e.cfg.RetryBackoff):
			case <-ctx.Done():
				return fmt.Errorf("%s: %w", op, domain.ErrUpstreamTimeout)
			}
		}
		leafCtx, cancel := context.WithTimeout(ctx, e.cfg.LeafTimeout)
		err = fn(leafCtx)
		cancel()
		if err == nil || !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return fmt.Errorf("%s: %w", op, domain.ErrUpstreamTimeout)
}

// mergeWarehouses une dos listas de bodegas sin duplicados, ordenadas.
func mergeWarehouses(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, id := range list {
			if id != "" && !seen[id] {
				seen[id] = true
				merged = append(merged, id)
			}
		}
	}
	sort.Strings(merged)
	return merged
}
