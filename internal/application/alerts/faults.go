package alerts

import (
	"errors"

	"github.com/jhoicas/stockflow-api/internal/domain"
)

// Clases de fault por producto. Ninguna aborta el lote: se recogen junto a las
// alertas exitosas (éxito parcial, nunca todo-o-nada).
const (
	FaultConfiguration   = "CONFIGURATION"    // umbral no resoluble
	FaultDataIntegrity   = "DATA_INTEGRITY"   // stock negativo, ciclo de bundle
	FaultUpstreamTimeout = "UPSTREAM_TIMEOUT" // lectura vencida tras reintento
	FaultUpstreamError   = "UPSTREAM_ERROR"   // otra falla de lectura upstream
)

// ProductFault fault acotado a un producto dentro de un lote.
type ProductFault struct {
	ProductID string `json:"product_id"`
	SKU       string `json:"sku"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail"`
}

// classifyFault mapea un error de evaluación a su clase de fault.
func classifyFault(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoThreshold):
		return FaultConfiguration
	case errors.Is(err, domain.ErrDataIntegrity):
		return FaultDataIntegrity
	case errors.Is(err, domain.ErrUpstreamTimeout):
		return FaultUpstreamTimeout
	default:
		return FaultUpstreamError
	}
}
