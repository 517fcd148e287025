package stock

import (
	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
)

// NewStock calcula el stock resultante de aplicar un movimiento (servicio de
// dominio, sin acceso a datos). La regla por tipo:
//
//	IN, RETURN  -> stockActual + cantidad
//	OUT         -> stockActual - cantidad (rechaza si stockActual < cantidad)
//	ADJUSTMENT  -> cantidad como valor absoluto de stock
//
// Para ADJUSTMENT se mantiene la validación histórica stockActual < cantidad
// aunque la cantidad se aplique como valor absoluto: los clientes existentes
// dependen de ese comportamiento.
func NewStock(movementType string, quantity, current int) (int, error) {
	if !entity.IsValidMovementType(movementType) {
		return 0, domain.ErrInvalidInput
	}
	if quantity <= 0 {
		return 0, domain.ErrInvalidInput
	}
	switch movementType {
	case entity.MovementTypeIN, entity.MovementTypeRETURN:
		return current + quantity, nil
	case entity.MovementTypeOUT:
		if current < quantity {
			return 0, domain.ErrInsufficientStock
		}
		return current - quantity, nil
	case entity.MovementTypeADJUSTMENT:
		if current < quantity {
			return 0, domain.ErrInsufficientStock
		}
		return quantity, nil
	}
	return 0, domain.ErrInvalidInput
}
