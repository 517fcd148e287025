package stock

import (
	"context"
	"time"

	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
	"github.com/tiendapro/storefront-api/internal/domain/repository"
)

// Límites de paginación para el listado de movimientos.
const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListMovementsUseCase consultas de solo lectura sobre el libro de
// movimientos: listado paginado con filtros y agregado por tipo sobre el
// conjunto filtrado completo. No interactúa con la ruta de escritura.
type ListMovementsUseCase struct {
	movRepo     repository.StockMovementRepository
	variantRepo repository.VariantRepository
}

// NewListMovementsUseCase construye el caso de uso de consulta.
func NewListMovementsUseCase(movRepo repository.StockMovementRepository, variantRepo repository.VariantRepository) *ListMovementsUseCase {
	return &ListMovementsUseCase{movRepo: movRepo, variantRepo: variantRepo}
}

// ListQuery filtros (combinados con AND) y paginación del listado.
type ListQuery struct {
	VariantID string
	Type      string
	ActorID   string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

// MovementPage página de movimientos más metadatos y agregado por tipo.
// Summary refleja el conjunto filtrado completo, no solo la página actual.
type MovementPage struct {
	Movements []*entity.StockMovement
	Total     int
	Page      int
	Limit     int
	Pages     int
	HasNext   bool
	HasPrev   bool
	Summary   []repository.TypeSummary
}

// ListMovements devuelve los movimientos que cumplen todos los filtros,
// ordenados del más reciente al más antiguo, junto con el total, el número de
// páginas y el resumen por tipo.
func (uc *ListMovementsUseCase) ListMovements(ctx context.Context, q ListQuery) (*MovementPage, error) {
	if q.Type != "" && !entity.IsValidMovementType(q.Type) {
		return nil, domain.ErrInvalidInput
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = defaultPageLimit
	}
	if q.Limit > maxPageLimit {
		q.Limit = maxPageLimit
	}

	filter := repository.MovementFilter{
		VariantID: q.VariantID,
		Type:      q.Type,
		ActorID:   q.ActorID,
		DateFrom:  q.DateFrom,
		DateTo:    q.DateTo,
	}

	total, err := uc.movRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	offset := (q.Page - 1) * q.Limit
	movements, err := uc.movRepo.List(ctx, filter, q.Limit, offset)
	if err != nil {
		return nil, err
	}

	summary, err := uc.movRepo.SummaryByType(ctx, filter)
	if err != nil {
		return nil, err
	}

	pages := (total + q.Limit - 1) / q.Limit
	return &MovementPage{
		Movements: movements,
		Total:     total,
		Page:      q.Page,
		Limit:     q.Limit,
		Pages:     pages,
		HasNext:   q.Page < pages,
		HasPrev:   q.Page > 1 && total > 0,
		Summary:   summary,
	}, nil
}

// GetMovement devuelve una entrada del libro por id.
func (uc *ListMovementsUseCase) GetMovement(ctx context.Context, id string) (*entity.StockMovement, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.movRepo.GetByID(ctx, id)
}

// GetVariantStock devuelve el stock actual de una variante (lado de lectura
// del Variant Store).
func (uc *ListMovementsUseCase) GetVariantStock(ctx context.Context, variantID string) (*entity.Variant, error) {
	if variantID == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.variantRepo.GetStock(ctx, variantID)
}
