package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
	"github.com/tiendapro/storefront-api/internal/domain/repository"
)

var _ repository.VariantRepository = (*VariantRepo)(nil)

// VariantRepo adaptador hacia la tabla product_variants del catálogo.
// El libro de stock solo toca la columna stock; el resto de la fila pertenece
// al módulo de catálogo.
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// GetStock lee el stock actual de una variante.
func (r *VariantRepo) GetStock(ctx context.Context, variantID string) (*entity.Variant, error) {
	query := `
		SELECT id, stock, updated_at
		FROM product_variants WHERE id = $1`
	var v entity.Variant
	err := r.q.QueryRow(ctx, query, variantID).Scan(&v.ID, &v.Stock, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get variant stock: %w", err)
	}
	return &v, nil
}

// GetStockForUpdate lee el stock y bloquea la fila (SELECT FOR UPDATE) para
// serializar el read-modify-write dentro de la transacción.
func (r *VariantRepo) GetStockForUpdate(ctx context.Context, variantID string) (*entity.Variant, error) {
	query := `
		SELECT id, stock, updated_at
		FROM product_variants WHERE id = $1
		FOR UPDATE`
	var v entity.Variant
	err := r.q.QueryRow(ctx, query, variantID).Scan(&v.ID, &v.Stock, &v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get variant stock for update: %w", err)
	}
	return &v, nil
}

// UpdateStock escribe el nuevo valor de stock de la variante.
func (r *VariantRepo) UpdateStock(ctx context.Context, variantID string, newStock int) error {
	query := `
		UPDATE product_variants
		SET stock = $2, updated_at = now()
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, variantID, newStock)
	if err != nil {
		return fmt.Errorf("update variant stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
