package dto

import (
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToWarehouseResponse mapea la entidad al contrato HTTP.
func ToWarehouseResponse(w *entity.Warehouse) *WarehouseResponse {
	if w == nil {
		return nil
	}
	return &WarehouseResponse{
		ID:        w.ID,
		CompanyID: w.CompanyID,
		Name:      w.Name,
		Address:   w.Address,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
}
