package dto

import (
	"time"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// ProductResponse salida de un producto del catálogo.
type ProductResponse struct {
	ID               string    `json:"id"`
	CompanyID        string    `json:"company_id"`
	SKU              string    `json:"sku"`
	Name             string    `json:"name"`
	ReorderThreshold *string   `json:"reorder_threshold"` // null = usa el default de la empresa
	Priority         int       `json:"priority"`
	IsBundle         bool      `json:"is_bundle"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToProductResponse mapea la entidad al contrato HTTP.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	resp := &ProductResponse{
		ID:        p.ID,
		CompanyID: p.CompanyID,
		SKU:       p.SKU,
		Name:      p.Name,
		Priority:  p.Priority,
		IsBundle:  p.IsBundle,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.ReorderThreshold != nil {
		t := p.ReorderThreshold.String()
		resp.ReorderThreshold = &t
	}
	return resp
}
