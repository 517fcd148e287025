package stock

import (
	"context"

	"github.com/tiendapro/storefront-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza la atomicidad del par
// (inserción en el libro, actualización de stock): o ambos se confirman,
// o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
	) error) error
}
