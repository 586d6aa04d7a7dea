package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stockflow-api/internal/application/alerts"
	"github.com/jhoicas/stockflow-api/internal/application/auth"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
	"github.com/jhoicas/stockflow-api/internal/infrastructure/pdf"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.AuthUseCase
	AlertEngine   *alerts.Engine
	CompanyRepo   repository.CompanyRepository
	ProductRepo   repository.ProductRepository
	WarehouseRepo repository.WarehouseRepository
	AlertReport   *pdf.AlertReportGenerator
	JWTSecret     string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Alertas de bajo stock (protegido; cualquier rol autenticado puede consultar)
	alertsGroup := protected.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertEngine, deps.CompanyRepo, deps.AlertReport)
	alertsGroup.Get("/low-stock", alertHandler.LowStock)
	// El reporte PDF se restringe a quienes operan bodega
	alertsGroup.Get("/low-stock/report", RequireRole("admin", "bodeguero"), alertHandler.LowStockReport)

	// Products (protegido, solo lectura)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductRepo)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Warehouses (protegido, solo lectura)
	warehouses := protected.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseRepo)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
}
