package alerts

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/pkg/metrics"
)

// Escenario: umbral 10, stock 8, sin ventas → alerta LOW_STOCK con
// days_of_supply indefinido (sin división por cero).
func TestComputeAlerts_BajoUmbralSinVentas(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.setStock("p-1", "wh-1", "8")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 1)
	require.Empty(t, result.Faults)

	alert := result.Alerts[0]
	assert.Equal(t, "p-1", alert.ProductID)
	assert.Equal(t, "wh-1", alert.WarehouseID)
	assert.Equal(t, []string{entity.ReasonLowStock, entity.ReasonNoSupplier}, alert.ReasonCodes)
	assert.Nil(t, alert.Velocity, "sin ventas en la ventana la velocidad es null")
	assert.Nil(t, alert.DaysOfSupply)
	assert.Equal(t, 1, alert.Severity)
}

// Escenario: umbral 50, stock 100, velocidad 20/día, lead time 7 días →
// days_of_supply 5 < 7 → VELOCITY_RISK aunque el stock supera el umbral.
func TestComputeAlerts_RiesgoPorVelocidad(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("q-1", "SKU-Q", decPtr("50"), 0)
	env.setStock("q-1", "wh-1", "100")
	env.addSales("q-1", "wh-1", "20", 30)
	env.addSupplier("q-1", "sup-1", "Proveedor Uno", 7, "0.9", intPtr(1))

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 1)

	alert := result.Alerts[0]
	assert.Equal(t, []string{entity.ReasonVelocityRisk}, alert.ReasonCodes)
	require.NotNil(t, alert.Velocity)
	assert.True(t, alert.Velocity.Equal(dec("20")), "velocidad = 600/30 = 20 con los 30 eventos dentro de la ventana, fue %s", alert.Velocity)
	require.NotNil(t, alert.DaysOfSupply)
	assert.True(t, alert.DaysOfSupply.Equal(dec("5")), "days_of_supply = 100/20 = 5, fue %s", alert.DaysOfSupply)
	require.NotNil(t, alert.RecommendedSupplierID)
	assert.Equal(t, "sup-1", *alert.RecommendedSupplierID)
}

// Producto sano: stock sobre el umbral y suministro que alcanza hasta el lead
// time → ninguna alerta.
func TestComputeAlerts_ProductoSanoNoAlerta(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("s-1", "SKU-S", decPtr("10"), 0)
	env.setStock("s-1", "wh-1", "200")
	env.addSales("s-1", "wh-1", "2", 30) // velocidad 2/día → 100 días de suministro
	env.addSupplier("s-1", "sup-1", "Proveedor Uno", 7, "0.9", nil)

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	assert.Empty(t, result.Alerts)
	assert.Empty(t, result.Faults)
}

// Escenario: bundle 2×C1 (stock 10) + 1×C2 (stock 3), umbral 2 →
// disponible = min(floor(10/2), floor(3/1)) = 3 ≥ 2 → sin alerta.
func TestComputeAlerts_BundleConDisponibilidadSuficiente(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.companies.companies[testCompanyID].DefaultReorderThreshold = decPtr("2")
	env.addProduct("b-1", "SKU-B", decPtr("2"), 0)
	env.addProduct("c-1", "SKU-C1", nil, 0)
	env.addProduct("c-2", "SKU-C2", nil, 0)
	env.addComponent("b-1", "c-1", "2")
	env.addComponent("b-1", "c-2", "1")
	env.setStock("c-1", "wh-1", "10")
	env.setStock("c-2", "wh-1", "3")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	assert.Nil(t, findAlert(result, "b-1", "wh-1"), "disponible 3 ≥ umbral 2: el bundle no alerta")
}

// El mismo bundle con umbral 4 sí alerta, marcado BUNDLE_DERIVED.
func TestComputeAlerts_BundleBajoUmbral(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.companies.companies[testCompanyID].DefaultReorderThreshold = decPtr("1")
	env.addProduct("b-1", "SKU-B", decPtr("4"), 0)
	env.addProduct("c-1", "SKU-C1", nil, 0)
	env.addProduct("c-2", "SKU-C2", nil, 0)
	env.addComponent("b-1", "c-1", "2")
	env.addComponent("b-1", "c-2", "1")
	env.setStock("c-1", "wh-1", "10")
	env.setStock("c-2", "wh-1", "3")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)

	alert := findAlert(result, "b-1", "wh-1")
	require.NotNil(t, alert, "disponible 3 ≤ umbral 4: el bundle alerta")
	assert.True(t, alert.OnHand.Equal(dec("3")), "on_hand derivado de componentes")
	assert.Contains(t, alert.ReasonCodes, entity.ReasonBundleDerived)
}

// Escenario: sin proveedor vinculado y bajo umbral → la alerta igual se emite,
// con NO_SUPPLIER y sin proveedor recomendado.
func TestComputeAlerts_SinProveedor(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("r-1", "SKU-R", decPtr("10"), 0)
	env.setStock("r-1", "wh-1", "4")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 1)

	alert := result.Alerts[0]
	assert.ElementsMatch(t, []string{entity.ReasonLowStock, entity.ReasonNoSupplier}, alert.ReasonCodes)
	assert.Nil(t, alert.RecommendedSupplierID)
}

// El umbral no resoluble de un producto es fault CONFIGURATION y no suprime
// las alertas de los demás productos del lote.
func TestComputeAlerts_FaultDeUmbralNoAbortaLote(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("ok-1", "SKU-OK", decPtr("10"), 0)
	env.setStock("ok-1", "wh-1", "5")
	env.addProduct("huerfano-1", "SKU-HUERFANO", nil, 0) // sin umbral propio ni default de empresa

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)

	require.Len(t, result.Faults, 1)
	assert.Equal(t, "huerfano-1", result.Faults[0].ProductID)
	assert.Equal(t, FaultConfiguration, result.Faults[0].Kind)
	assert.Nil(t, findAlert(result, "huerfano-1", "wh-1"), "el producto con fault no aparece en alerts")
	require.NotNil(t, findAlert(result, "ok-1", "wh-1"), "el fault ajeno no bloquea esta alerta")
}

// Stock negativo es corrupción upstream: fault DATA_INTEGRITY, nunca cero.
func TestComputeAlerts_StockNegativoEsFaultDeIntegridad(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("neg-1", "SKU-NEG", decPtr("10"), 0)
	env.setStock("neg-1", "wh-1", "-3")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Faults, 1)
	assert.Equal(t, FaultDataIntegrity, result.Faults[0].Kind)
	assert.Empty(t, result.Alerts)
}

// Un ciclo en la composición (bundle que se contiene a sí mismo vía otro) se
// detecta con visited-set y se reporta como DATA_INTEGRITY, sin recursión infinita.
func TestComputeAlerts_CicloDeBundle(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("b-1", "SKU-B1", decPtr("2"), 0)
	env.addComponent("b-1", "b-2", "1")
	env.addComponent("b-2", "b-1", "1") // b-2 no es producto activo pero sí componente

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Faults, 1)
	assert.Equal(t, FaultDataIntegrity, result.Faults[0].Kind)
	assert.Contains(t, result.Faults[0].Detail, "ciclo")
}

// Una lectura vencida se reintenta una vez: si el segundo intento responde,
// no hay fault.
func TestComputeAlerts_TimeoutSeReintentaUnaVez(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30, RetryBackoff: time.Millisecond})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.setStock("p-1", "wh-1", "5")
	env.levels.failures = 1

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	assert.Empty(t, result.Faults)
	require.Len(t, result.Alerts, 1)
}

// Dos timeouts seguidos agotan el reintento: fault UPSTREAM_TIMEOUT por
// producto, sin abortar el lote.
func TestComputeAlerts_TimeoutAgotadoEsFault(t *testing.T) {
	// Un solo worker para que los dos fallos inyectados caigan en el mismo producto.
	env := newTestEnv(Config{WindowDays: 30, RetryBackoff: time.Millisecond, MaxWorkers: 1})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.setStock("p-1", "wh-1", "5")
	env.addProduct("p-2", "SKU-P2", decPtr("10"), 0)
	env.setStock("p-2", "wh-1", "5")
	env.levels.failures = 2 // las dos lecturas de un producto fallan

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Faults, 1)
	assert.Equal(t, FaultUpstreamTimeout, result.Faults[0].Kind)
	assert.Len(t, result.Alerts, 1, "el otro producto se evalúa normal")
}

// Empresa inexistente es condición de lote completo: aborta la llamada.
func TestComputeAlerts_EmpresaInexistenteAbortaLote(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})

	_, err := env.engine.ComputeAlerts(context.Background(), "co-fantasma", Filters{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCompanyNotFound))
}

// Orden: days_of_supply ascendente primero; sin days van después por razón
// on_hand/umbral; desempates por prioridad y por ID. Correr dos veces produce
// el mismo orden (determinismo) y Severity 1..n.
func TestComputeAlerts_OrdenDeterministaPorUrgencia(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	// a-2: velocidad 10/día, stock 20 → 2 días de suministro
	env.addProduct("a-2", "SKU-A2", decPtr("50"), 0)
	env.setStock("a-2", "wh-1", "20")
	env.addSales("a-2", "wh-1", "10", 30)
	env.addSupplier("a-2", "sup-1", "Proveedor Uno", 7, "0.9", nil)
	// a-1: velocidad 10/día, stock 50 → 5 días de suministro
	env.addProduct("a-1", "SKU-A1", decPtr("10"), 0)
	env.setStock("a-1", "wh-1", "50")
	env.addSales("a-1", "wh-1", "10", 30)
	env.addSupplier("a-1", "sup-1", "Proveedor Uno", 7, "0.9", nil)
	// z-1: sin ventas, ratio 2/10 = 0.2 → después de los que tienen days
	env.addProduct("z-1", "SKU-Z1", decPtr("10"), 0)
	env.setStock("z-1", "wh-1", "2")
	// z-2: sin ventas, ratio 8/10 = 0.8 → el último
	env.addProduct("z-2", "SKU-Z2", decPtr("10"), 0)
	env.setStock("z-2", "wh-1", "8")

	first, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	second, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)

	var order []string
	for i, a := range first.Alerts {
		order = append(order, a.ProductID)
		assert.Equal(t, i+1, a.Severity)
	}
	assert.Equal(t, []string{"a-2", "a-1", "z-1", "z-2"}, order)

	var orderAgain []string
	for _, a := range second.Alerts {
		orderAgain = append(orderAgain, a.ProductID)
	}
	assert.Equal(t, order, orderAgain, "dos corridas sobre la misma entrada dan el mismo orden")
}

// La prioridad configurada del producto desempata antes que el ID.
func TestComputeAlerts_PrioridadDesempata(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("z-1", "SKU-Z1", decPtr("10"), 5)
	env.setStock("z-1", "wh-1", "5")
	env.addProduct("a-1", "SKU-A1", decPtr("10"), 9) // mismo ratio, menor prioridad
	env.setStock("a-1", "wh-1", "5")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 2)
	assert.Equal(t, "z-1", result.Alerts[0].ProductID, "prioridad 5 gana sobre 9 aunque su ID ordene después")
}

// El agregado "ALL" coexiste con las alertas por bodega: un superávit global
// no oculta el quiebre de una bodega.
func TestComputeAlerts_AgregadoNoEnmascaraQuiebreLocal(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.setStock("p-1", "wh-1", "0")
	env.setStock("p-1", "wh-2", "500")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{IncludeAggregate: true})
	require.NoError(t, err)

	require.NotNil(t, findAlert(result, "p-1", "wh-1"), "la bodega quebrada alerta")
	assert.Nil(t, findAlert(result, "p-1", "wh-2"))
	assert.Nil(t, findAlert(result, "p-1", entity.WarehouseAll), "el total 500 > 10 no alerta")
}

// Con stock total bajo el umbral, el agregado también se emite.
func TestComputeAlerts_AgregadoBajoUmbral(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.setStock("p-1", "wh-1", "3")
	env.setStock("p-1", "wh-2", "4")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{IncludeAggregate: true})
	require.NoError(t, err)

	agg := findAlert(result, "p-1", entity.WarehouseAll)
	require.NotNil(t, agg)
	assert.True(t, agg.OnHand.Equal(dec("7")), "el agregado suma las bodegas")
	require.NotNil(t, findAlert(result, "p-1", "wh-1"))
	require.NotNil(t, findAlert(result, "p-1", "wh-2"))
}

// El filtro por bodega limita la evaluación a ese par; la ausencia de fila en
// la bodega filtrada cuenta como stock cero.
func TestComputeAlerts_FiltroPorBodega(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.setStock("p-1", "wh-1", "3")

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{WarehouseID: "wh-2"})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 1)
	alert := result.Alerts[0]
	assert.Equal(t, "wh-2", alert.WarehouseID)
	assert.True(t, alert.OnHand.IsZero(), "sin fila = cero, no desconocido")
}

// Un snapshot más viejo que el umbral de frescura degrada confianza
// (STALE_DATA) pero no se descarta.
func TestComputeAlerts_DatoViejoSeMarcaNoSeDescarta(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30, StaleAfter: time.Hour})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.levels.set("p-1", "wh-1", dec("4"), time.Now().Add(-48*time.Hour))

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	require.Len(t, result.Alerts, 1)
	assert.Contains(t, result.Alerts[0].ReasonCodes, entity.ReasonStaleData)
}

// Una bodega con ventas recientes pero sin fila de inventario entra al
// universo de evaluación con stock cero.
func TestComputeAlerts_BodegaSoloConVentas(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.addSales("p-1", "wh-9", "1", 5) // vendió ahí, nunca hubo fila de stock

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)
	alert := findAlert(result, "p-1", "wh-9")
	require.NotNil(t, alert, "la bodega con actividad de ventas se evalúa")
	assert.True(t, alert.OnHand.IsZero())
	assert.Contains(t, alert.ReasonCodes, entity.ReasonLowStock)
}

// Un bundle cuyo componente tiene la fila de inventario vieja alerta con
// STALE_DATA: el dato viejo de una hoja degrada la confianza del derivado.
func TestComputeAlerts_BundleConComponenteViejoMarcaStale(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30, StaleAfter: time.Hour})
	env.addProduct("b-1", "SKU-B", decPtr("4"), 0)
	env.addProduct("c-1", "SKU-C1", nil, 0)
	env.addComponent("b-1", "c-1", "1")
	env.levels.set("c-1", "wh-1", dec("3"), time.Now().Add(-48*time.Hour))

	result, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)

	alert := findAlert(result, "b-1", "wh-1")
	require.NotNil(t, alert, "disponible 3 ≤ umbral 4: el bundle alerta")
	assert.Contains(t, alert.ReasonCodes, entity.ReasonBundleDerived)
	assert.Contains(t, alert.ReasonCodes, entity.ReasonStaleData,
		"el snapshot del componente supera el umbral de frescura")
}

// El lote registra sus instrumentos: lotes, productos evaluados, alertas
// emitidas y faults por clase.
func TestComputeAlerts_RegistraMetricasDelLote(t *testing.T) {
	env := newTestEnv(Config{WindowDays: 30})
	env.engine.met = metrics.New(prometheus.NewRegistry())
	env.addProduct("p-1", "SKU-P", decPtr("10"), 0)
	env.setStock("p-1", "wh-1", "8")
	env.addProduct("huerfano-1", "SKU-H", nil, 0) // sin umbral propio ni default

	_, err := env.engine.ComputeAlerts(context.Background(), testCompanyID, Filters{})
	require.NoError(t, err)

	m := env.engine.met
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchesTotal))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.ProductsEvaluated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AlertsEmitted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.FaultsTotal.WithLabelValues(FaultConfiguration)))
}
