package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU del inventario (multi-bodega).
// ReorderThreshold es opcional: nil significa "usar el umbral por defecto de la empresa".
// Priority ordena los desempates de alertas (menor = más urgente; 0 por defecto).
type Product struct {
	ID               string
	CompanyID        string
	SKU              string // código único por empresa
	Name             string
	ReorderThreshold *decimal.Decimal
	Priority         int
	IsBundle         bool
	Status           string // active, inactive
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// BundleComponent representa una línea de composición de un bundle:
// el producto padre contiene QtyPerBundle unidades del componente.
// Un bundle no tiene stock propio; su disponibilidad se deriva de sus componentes.
type BundleComponent struct {
	ParentID     string
	ComponentID  string
	QtyPerBundle decimal.Decimal // siempre > 0
}
