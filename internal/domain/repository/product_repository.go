package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El motor de alertas solo usa lecturas; la escritura de productos vive en
// otro servicio (la BD garantiza un SKU activo por empresa).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error)
	ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error)
	// ListActiveByCompany devuelve todos los productos activos de la empresa,
	// el universo que evalúa el motor de alertas en cada lote.
	ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.Product, error)
}

// BundleRepository expone la composición precomputada de los bundles.
// Lista vacía = el producto no es bundle (o no tiene componentes cargados).
type BundleRepository interface {
	GetComponents(ctx context.Context, productID string) ([]entity.BundleComponent, error)
}
