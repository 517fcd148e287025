package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
	"github.com/tiendapro/storefront-api/internal/domain/repository"
	"github.com/tiendapro/storefront-api/pkg/logger"
)

// BulkUseCase aplica listas ordenadas de movimientos o reseteos de stock con
// aislamiento por ítem: cada ítem es su propia unidad atómica y el fallo de
// uno no revierte los anteriores ni detiene los siguientes. El lote en sí no
// es transaccional.
type BulkUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewBulkUseCase construye el caso de uso masivo.
func NewBulkUseCase(txRunner TxRunner, log *logger.Logger) *BulkUseCase {
	return &BulkUseCase{txRunner: txRunner, log: log}
}

// BulkItemInput ítem de una operación masiva. Para bulk_create se usan
// Type/Quantity/Reason; para stock_reset, NewStock.
type BulkItemInput struct {
	VariantID string
	Type      string
	Quantity  int
	Reason    string
	NewStock  *int
}

// BulkResult ítems aplicados y cuántos se omitieron. El motivo de cada
// omisión queda solo en los logs del servidor.
type BulkResult struct {
	Applied []MovementResult
	Skipped int
}

// BulkCreate aplica cada ítem como un movimiento individual (misma lógica que
// RegisterMovement). Ítems con campos faltantes, variante inexistente o stock
// insuficiente se omiten y el resto continúa; un fallo de almacenamiento o un
// conflicto agotado abortan el lote devolviendo el avance parcial junto al error.
func (uc *BulkUseCase) BulkCreate(ctx context.Context, actorID string, items []BulkItemInput) (*BulkResult, error) {
	result := &BulkResult{}
	for i, item := range items {
		input := MovementInput{
			VariantID: item.VariantID,
			Type:      item.Type,
			Quantity:  item.Quantity,
			Reason:    item.Reason,
			ActorID:   actorID,
		}
		if input.VariantID == "" || !entity.IsValidMovementType(input.Type) || input.Quantity <= 0 {
			uc.logSkip(i, item.VariantID, domain.ErrInvalidInput)
			result.Skipped++
			continue
		}

		var applied *MovementResult
		err := runWithRetry(ctx, uc.txRunner, func(
			movRepo repository.StockMovementRepository,
			variantRepo repository.VariantRepository,
		) error {
			r, err := applyMovement(ctx, movRepo, variantRepo, input, time.Now())
			if err != nil {
				return err
			}
			applied = r
			return nil
		})
		switch {
		case err == nil:
			result.Applied = append(result.Applied, *applied)
		case errors.Is(err, domain.ErrInvalidInput),
			errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrInsufficientStock):
			uc.logSkip(i, item.VariantID, err)
			result.Skipped++
		default:
			// Conflicto agotado o fallo de infraestructura: abortar el lote
			// sin revertir los ítems ya aplicados.
			return result, err
		}
	}
	return result, nil
}

// StockReset fija el stock de cada variante en el valor indicado. Si el valor
// coincide con el stock actual el ítem se omite sin crear movimiento; si no,
// se crea un único ADJUSTMENT con la magnitud de la diferencia y un motivo que
// registra el antes y el después. Esta operación es una corrección autoritativa:
// no aplica la validación de stock insuficiente.
func (uc *BulkUseCase) StockReset(ctx context.Context, actorID string, items []BulkItemInput) (*BulkResult, error) {
	result := &BulkResult{}
	for i, item := range items {
		if item.VariantID == "" || item.NewStock == nil || *item.NewStock < 0 {
			uc.logSkip(i, item.VariantID, domain.ErrInvalidInput)
			result.Skipped++
			continue
		}
		target := *item.NewStock

		var applied *MovementResult
		err := runWithRetry(ctx, uc.txRunner, func(
			movRepo repository.StockMovementRepository,
			variantRepo repository.VariantRepository,
		) error {
			applied = nil
			variant, err := variantRepo.GetStockForUpdate(ctx, item.VariantID)
			if err != nil {
				return err
			}
			if variant.Stock == target {
				// No-op: el stock ya tiene el valor pedido; no se crea movimiento.
				return nil
			}
			if err := variantRepo.UpdateStock(ctx, item.VariantID, target); err != nil {
				return err
			}
			mov := &entity.StockMovement{
				ID:        uuid.New().String(),
				VariantID: item.VariantID,
				Type:      entity.MovementTypeADJUSTMENT,
				Quantity:  absInt(target - variant.Stock),
				Reason:    fmt.Sprintf("Reseteo de stock de %d a %d", variant.Stock, target),
				CreatedBy: actorID,
				CreatedAt: time.Now(),
			}
			if err := movRepo.Create(ctx, mov); err != nil {
				return err
			}
			applied = &MovementResult{Movement: mov, NewStock: target}
			return nil
		})
		switch {
		case err == nil && applied != nil:
			result.Applied = append(result.Applied, *applied)
		case err == nil:
			// No-op silencioso: cuenta como omitido pero no es un error.
			uc.logSkip(i, item.VariantID, nil)
			result.Skipped++
		case errors.Is(err, domain.ErrNotFound):
			uc.logSkip(i, item.VariantID, err)
			result.Skipped++
		default:
			return result, err
		}
	}
	return result, nil
}

// logSkip registra un ítem omitido; los callers no reciben el detalle por ítem.
func (uc *BulkUseCase) logSkip(index int, variantID string, cause error) {
	if uc.log == nil {
		return
	}
	ev := uc.log.Warn().Int("item", index).Str("variant_id", variantID)
	if cause != nil {
		ev = ev.Err(cause)
	}
	ev.Msg("ítem omitido en operación masiva de stock")
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
