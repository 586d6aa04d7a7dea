package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stockflow-api/internal/domain/entity"
	"github.com/jhoicas/stockflow-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, company_id, sku, name, reorder_threshold, priority, is_bundle, status, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por ID. Devuelve nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scanOne(r.q.QueryRow(ctx, query, id))
}

// GetByCompanyAndSKU obtiene un producto por SKU dentro de la empresa
// (el SKU es único por empresa, no global).
func (r *ProductRepo) GetByCompanyAndSKU(ctx context.Context, companyID, sku string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE company_id = $1 AND sku = $2`
	return r.scanOne(r.q.QueryRow(ctx, query, companyID, sku))
}

// ListByCompany lista los productos de la empresa con paginación, ordenados por SKU.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID string, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE company_id = $1
		ORDER BY sku LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// ListActiveByCompany devuelve todos los productos activos de la empresa, ordenados por ID
// para que el recorrido del lote sea estable entre corridas.
func (r *ProductRepo) ListActiveByCompany(ctx context.Context, companyID string) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE company_id = $1 AND status = 'active'
		ORDER BY id`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *ProductRepo) scanOne(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.ReorderThreshold,
		&p.Priority, &p.IsBundle, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *ProductRepo) scanAll(rows pgx.Rows) ([]*entity.Product, error) {
	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.ReorderThreshold,
			&p.Priority, &p.IsBundle, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
