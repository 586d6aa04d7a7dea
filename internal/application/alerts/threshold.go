package alerts

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockflow-api/internal/domain"
	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// ResolveThreshold devuelve el umbral efectivo de reorden: el umbral explícito
// del producto si existe, si no el por defecto de la empresa (pasado como
// configuración explícita, nunca estado global). Un bundle usa la misma
// resolución que cualquier producto.
//
// Si no hay ninguno, falla con ErrNoThreshold: degradar a cero en silencio
// suprimiría alertas legítimas, así que la ausencia es un error del producto.
func ResolveThreshold(product *entity.Product, companyDefault *decimal.Decimal) (decimal.Decimal, error) {
	if product.ReorderThreshold != nil {
		return *product.ReorderThreshold, nil
	}
	if companyDefault != nil {
		return *companyDefault, nil
	}
	return decimal.Zero, fmt.Errorf("producto %s (%s): %w", product.SKU, product.ID, domain.ErrNoThreshold)
}
