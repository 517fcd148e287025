package repository

import (
	"context"
	"time"

	"github.com/tiendapro/storefront-api/internal/domain/entity"
)

// MovementFilter filtros combinables (AND) para consultar el libro de movimientos.
type MovementFilter struct {
	VariantID string
	Type      string
	ActorID   string
	DateFrom  *time.Time
	DateTo    *time.Time
}

// TypeSummary agregado por tipo de movimiento sobre un conjunto filtrado.
type TypeSummary struct {
	Type          string
	Count         int
	TotalQuantity int
}

// StockMovementRepository define el puerto de persistencia para el libro de
// movimientos de stock. El libro es append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	GetByID(ctx context.Context, id string) (*entity.StockMovement, error)
	List(ctx context.Context, filter MovementFilter, limit, offset int) ([]*entity.StockMovement, error)
	Count(ctx context.Context, filter MovementFilter) (int, error)
	SummaryByType(ctx context.Context, filter MovementFilter) ([]TypeSummary, error)
}
