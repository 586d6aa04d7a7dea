package repository

import (
	"context"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
)

// SupplierWithLink junta el proveedor con los metadatos del vínculo a un producto.
type SupplierWithLink struct {
	Supplier entity.Supplier
	Link     entity.ProductSupplier
}

// SupplierRepository define el puerto de lectura de proveedores (DIP).
// Lista vacía no es error: "necesita reorden" y "el reorden es surtible"
// son hechos independientes.
type SupplierRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]SupplierWithLink, error)
}
