package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

// VelocityResult tasa de demanda reciente de un producto.
// NoSalesData distingue "cero ventas observadas" de "demanda cero confirmada":
// un producto nuevo sin historial no debe generar falsos negativos.
type VelocityResult struct {
	Velocity     decimal.Decimal // unidades vendidas por día en la ventana
	EventCount   int64
	NoSalesData  bool
	WarehouseIDs []string // bodegas con al menos una venta en la ventana
}

// VelocityEstimator calcula la velocidad de ventas sobre una ventana móvil fija.
// La tasa es total_vendido / días_de_ventana, sin ajuste estacional: es una
// aproximación deliberada, documentada, no un bug.
type VelocityEstimator struct {
	sales      repository.SalesRepository
	windowDays int
	now        func() time.Time
}

// NewVelocityEstimator construye el estimador con la ventana configurada.
func NewVelocityEstimator(sales repository.SalesRepository, windowDays int) *VelocityEstimator {
	return &VelocityEstimator{sales: sales, windowDays: windowDays, now: time.Now}
}

// Estimate devuelve la velocidad del producto en la bodega indicada
// (warehouseID vacío = todas las bodegas) sobre los últimos windowDays días.
func (e *VelocityEstimator) Estimate(ctx context.Context, productID, warehouseID string) (*VelocityResult, error) {
	to := e.now()
	from := to.AddDate(0, 0, -e.windowDays)

	window, err := e.sales.GetWindow(ctx, productID, warehouseID, from, to)
	if err != nil {
		return nil, fmt.Errorf("ventana de ventas %s: %w", productID, err)
	}
	if window.EventCount == 0 {
		return &VelocityResult{Velocity: decimal.Zero, NoSalesData: true}, nil
	}
	velocity := window.UnitsSold.Div(decimal.NewFromInt(int64(e.windowDays)))
	return &VelocityResult{
		Velocity:     velocity,
		EventCount:   window.EventCount,
		WarehouseIDs: window.WarehouseIDs,
	}, nil
}
