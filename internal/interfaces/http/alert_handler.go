package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/alerts"
	"github.com/jhoicas/stockflow-api/internal/application/dto"
	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/pdf"
)

// AlertHandler expone el motor de alertas de bajo stock.
type AlertHandler struct {
	engine      *alerts.Engine
	companyRepo repository.CompanyRepository
	report      *pdf.AlertReportGenerator
}

// NewAlertHandler construye el handler de alertas.
func NewAlertHandler(engine *alerts.Engine, companyRepo repository.CompanyRepository, report *pdf.AlertReportGenerator) *AlertHandler {
	return &AlertHandler{engine: engine, companyRepo: companyRepo, report: report}
}

// LowStock godoc
// @Summary      Alertas de bajo stock de la empresa
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id       query  string  false  "Limitar a una bodega"
// @Param        include_aggregate  query  bool    false  "Incluir alerta agregada ALL por producto"
// @Success      200  {object}  dto.AlertsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/low-stock [get]
func (h *AlertHandler) LowStock(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	var q dto.AlertQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query params inválidos"})
	}

	result, err := h.engine.ComputeAlerts(c.Context(), companyID, alerts.Filters{
		WarehouseID:      q.WarehouseID,
		IncludeAggregate: q.IncludeAggregate,
	})
	if err != nil {
		return h.mapBatchError(c, err)
	}
	return c.JSON(dto.ToAlertsResponse(result))
}

// LowStockReport godoc
// @Summary      Reporte PDF de alertas de bajo stock
// @Tags         alerts
// @Security     Bearer
// @Produce      application/pdf
// @Param        warehouse_id  query  string  false  "Limitar a una bodega"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alerts/low-stock/report [get]
func (h *AlertHandler) LowStockReport(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "company_id requerido"})
	}
	warehouseID := c.Query("warehouse_id")

	company, err := h.companyRepo.GetByID(c.Context(), companyID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	if company == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "COMPANY_NOT_FOUND", Message: "la empresa no existe"})
	}

	result, err := h.engine.ComputeAlerts(c.Context(), companyID, alerts.Filters{WarehouseID: warehouseID})
	if err != nil {
		return h.mapBatchError(c, err)
	}

	bytes, err := h.report.GenerateAlertReport(company, result, warehouseID, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "PDF_ERROR", Message: err.Error()})
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="alertas-bajo-stock.pdf"`)
	return c.Send(bytes)
}

func (h *AlertHandler) mapBatchError(c *fiber.Ctx, err error) error {
	if errors.Is(err, domain.ErrCompanyNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "COMPANY_NOT_FOUND", Message: "la empresa no existe"})
	}
	if errors.Is(err, domain.ErrUpstreamTimeout) {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "UPSTREAM_TIMEOUT", Message: "las capas de datos no respondieron a tiempo"})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
