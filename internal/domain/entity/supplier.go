package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier representa un proveedor de la empresa.
// ReliabilityScore va de 0 a 1 (histórico de cumplimiento de entregas).
type Supplier struct {
	ID               string
	CompanyID        string
	Name             string
	ContactEmail     string
	LeadTimeDays     int // días entre pedido y recepción, siempre > 0
	ReliabilityScore decimal.Decimal
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ProductSupplier es el vínculo muchos-a-muchos producto↔proveedor.
// PriorityRank es opcional (menor = preferido); nil se ordena al final.
type ProductSupplier struct {
	SupplierID   string
	ProductID    string
	PriorityRank *int
	UnitCost     decimal.Decimal
}
