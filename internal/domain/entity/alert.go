package entity

import "github.com/shopspring/decimal"

// WarehouseAll identifica la alerta agregada a nivel de empresa
// (suma de stock de todas las bodegas).
const WarehouseAll = "ALL"

// Códigos de razón de una alerta de reorden.
const (
	ReasonLowStock      = "LOW_STOCK"      // on_hand <= umbral efectivo
	ReasonVelocityRisk  = "VELOCITY_RISK"  // el stock se agota antes del lead time del mejor proveedor
	ReasonNoSupplier    = "NO_SUPPLIER"    // necesita reorden pero no hay proveedor vinculado
	ReasonStaleData     = "STALE_DATA"     // el snapshot de inventario supera el umbral de frescura
	ReasonBundleDerived = "BUNDLE_DERIVED" // on_hand derivado de componentes del bundle
)

// Alert es la salida efímera del motor de decisión: se recalcula bajo demanda
// y nunca es fuente de verdad del estado de stock.
// Velocity y DaysOfSupply son nil cuando no hay datos de ventas en la ventana.
type Alert struct {
	ProductID             string
	SKU                   string
	ProductName           string
	WarehouseID           string // ID de bodega o WarehouseAll
	OnHand                decimal.Decimal
	Threshold             decimal.Decimal
	Velocity              *decimal.Decimal // unidades/día en la ventana configurada
	DaysOfSupply          *decimal.Decimal // OnHand / Velocity; nil si Velocity es nil o cero
	Severity              int              // 1 = más urgente; asignado tras el ordenamiento
	RecommendedSupplierID *string
	RecommendedSupplier   string // nombre, vacío si no hay proveedor
	ReasonCodes           []string
}

// HasReason indica si la alerta incluye el código de razón dado.
func (a *Alert) HasReason(code string) bool {
	for _, r := range a.ReasonCodes {
		if r == code {
			return true
		}
	}
	return false
}
