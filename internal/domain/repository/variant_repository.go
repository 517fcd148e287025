package repository

import (
	"context"

	"github.com/tiendapro/storefront-api/internal/domain/entity"
)

// VariantRepository define el puerto hacia el Variant Store del catálogo.
// El libro de stock solo lee y escribe el campo Stock; el resto de la variante
// pertenece al módulo de catálogo.
type VariantRepository interface {
	GetStock(ctx context.Context, variantID string) (*entity.Variant, error)
	// GetStockForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	// Usar dentro de una transacción para serializar el read-modify-write.
	GetStockForUpdate(ctx context.Context, variantID string) (*entity.Variant, error)
	UpdateStock(ctx context.Context, variantID string, newStock int) error
}
