package dto

import (
	"github.com/jhoicas/stockflow-api/internal/application/alerts"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// AlertQuery filtros del listado de alertas (query params).
type AlertQuery struct {
	WarehouseID      string `query:"warehouse_id"`
	IncludeAggregate bool   `query:"include_aggregate"`
}

// AlertResponse una alerta de reorden lista para serializar.
// Los decimales van como string para no perder precisión en clientes JSON.
type AlertResponse struct {
	ProductID             string   `json:"product_id"`
	SKU                   string   `json:"sku"`
	ProductName           string   `json:"product_name"`
	WarehouseID           string   `json:"warehouse_id"`
	OnHand                string   `json:"on_hand"`
	Threshold             string   `json:"threshold"`
	Velocity              *string  `json:"velocity"`       // unidades/día; null sin datos de ventas
	DaysOfSupply          *string  `json:"days_of_supply"` // null sin velocidad
	Severity              int      `json:"severity"`
	RecommendedSupplierID *string  `json:"recommended_supplier_id"`
	RecommendedSupplier   string   `json:"recommended_supplier,omitempty"`
	ReasonCodes           []string `json:"reason_codes"`
}

// AlertsResponse resultado del lote: alertas ordenadas por urgencia más los
// faults por producto que no abortaron el cálculo.
type AlertsResponse struct {
	Alerts      []AlertResponse       `json:"alerts"`
	Faults      []alerts.ProductFault `json:"faults"`
	TotalAlerts int                   `json:"total_alerts"`
}

// ToAlertsResponse mapea el resultado del motor al contrato HTTP.
func ToAlertsResponse(result *alerts.BatchResult) *AlertsResponse {
	out := &AlertsResponse{
		Alerts:      make([]AlertResponse, 0, len(result.Alerts)),
		Faults:      result.Faults,
		TotalAlerts: len(result.Alerts),
	}
	if out.Faults == nil {
		out.Faults = []alerts.ProductFault{}
	}
	for i := range result.Alerts {
		out.Alerts = append(out.Alerts, toAlertResponse(&result.Alerts[i]))
	}
	return out
}

func toAlertResponse(a *entity.Alert) AlertResponse {
	resp := AlertResponse{
		ProductID:             a.ProductID,
		SKU:                   a.SKU,
		ProductName:           a.ProductName,
		WarehouseID:           a.WarehouseID,
		OnHand:                a.OnHand.String(),
		Threshold:             a.Threshold.String(),
		Severity:              a.Severity,
		RecommendedSupplierID: a.RecommendedSupplierID,
		RecommendedSupplier:   a.RecommendedSupplier,
		ReasonCodes:           a.ReasonCodes,
	}
	if a.Velocity != nil {
		v := a.Velocity.String()
		resp.Velocity = &v
	}
	if a.DaysOfSupply != nil {
		d := a.DaysOfSupply.String()
		resp.DaysOfSupply = &d
	}
	return resp
}
