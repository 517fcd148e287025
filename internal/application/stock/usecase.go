package stock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
	"github.com/tiendapro/storefront-api/internal/domain/repository"
	stockrules "github.com/tiendapro/storefront-api/internal/domain/stock"
)

// maxTxAttempts intentos ante conflicto de serialización antes de devolver
// domain.ErrConflict al caller.
const maxTxAttempts = 3

// RegisterMovementUseCase registra movimientos de stock de forma transaccional
// (IN, OUT, ADJUSTMENT, RETURN) con bloqueo de fila (SELECT FOR UPDATE) y
// Commit/Rollback. Es el único punto del sistema que muta el stock de una
// variante.
type RegisterMovementUseCase struct {
	txRunner TxRunner
}

// NewRegisterMovementUseCase construye el caso de uso.
func NewRegisterMovementUseCase(txRunner TxRunner) *RegisterMovementUseCase {
	return &RegisterMovementUseCase{txRunner: txRunner}
}

// MovementInput entrada para registrar un movimiento de stock.
// Quantity siempre se envía como magnitud positiva; el signo lo decide el tipo.
type MovementInput struct {
	VariantID string
	Type      string
	Quantity  int
	Reason    string
	ActorID   string
}

// MovementResult movimiento creado y stock resultante de la variante.
type MovementResult struct {
	Movement *entity.StockMovement
	NewStock int
}

// RegisterMovement valida la entrada, inicia una transacción, bloquea la fila
// de la variante, aplica la regla de stock por tipo y persiste el par
// (movimiento, nuevo stock). Ante conflicto de serialización reintenta hasta
// maxTxAttempts veces antes de devolver domain.ErrConflict.
func (uc *RegisterMovementUseCase) RegisterMovement(ctx context.Context, input MovementInput) (*MovementResult, error) {
	if input.VariantID == "" || input.ActorID == "" {
		return nil, domain.ErrInvalidInput
	}
	if !entity.IsValidMovementType(input.Type) {
		return nil, domain.ErrInvalidInput
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidInput
	}

	var result *MovementResult
	err := runWithRetry(ctx, uc.txRunner, func(
		movRepo repository.StockMovementRepository,
		variantRepo repository.VariantRepository,
	) error {
		r, err := applyMovement(ctx, movRepo, variantRepo, input, time.Now())
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyMovement ejecuta el read-modify-write dentro de la transacción del
// caller: lee el stock con bloqueo de fila, calcula el nuevo valor con la
// regla de dominio y persiste stock + movimiento como una sola unidad.
func applyMovement(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
	input MovementInput,
	now time.Time,
) (*MovementResult, error) {
	variant, err := variantRepo.GetStockForUpdate(ctx, input.VariantID)
	if err != nil {
		return nil, err
	}

	newStock, err := stockrules.NewStock(input.Type, input.Quantity, variant.Stock)
	if err != nil {
		return nil, err
	}

	if err := variantRepo.UpdateStock(ctx, input.VariantID, newStock); err != nil {
		return nil, err
	}

	reason := input.Reason
	if reason == "" {
		reason = entity.DefaultReason(input.Type)
	}
	mov := &entity.StockMovement{
		ID:        uuid.New().String(),
		VariantID: input.VariantID,
		Type:      input.Type,
		Quantity:  input.Quantity,
		Reason:    reason,
		CreatedBy: input.ActorID,
		CreatedAt: now,
	}
	if err := movRepo.Create(ctx, mov); err != nil {
		return nil, err
	}
	return &MovementResult{Movement: mov, NewStock: newStock}, nil
}

// runWithRetry ejecuta fn en una transacción y reintenta ante
// domain.ErrConflict (fallo de serialización o deadlock detectado por el
// TxRunner). Los demás errores se devuelven al primer intento.
func runWithRetry(ctx context.Context, tr TxRunner, fn func(
	movRepo repository.StockMovementRepository,
	variantRepo repository.VariantRepository,
) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = tr.Run(ctx, fn)
		if err == nil || !errors.Is(err, domain.ErrConflict) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
