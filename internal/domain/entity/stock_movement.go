package entity

import "time"

// Tipos de movimiento de stock.
const (
	MovementTypeIN         = "IN"         // entrada (recepción de mercancía)
	MovementTypeOUT        = "OUT"        // salida (venta)
	MovementTypeADJUSTMENT = "ADJUSTMENT" // ajuste manual
	MovementTypeRETURN     = "RETURN"     // devolución de cliente
)

// IsValidMovementType indica si el tipo pertenece al conjunto soportado.
func IsValidMovementType(t string) bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT, MovementTypeRETURN:
		return true
	}
	return false
}

// DefaultReason devuelve el motivo por defecto según el tipo de movimiento.
// Se usa cuando el caller no envía un motivo explícito.
func DefaultReason(movementType string) string {
	switch movementType {
	case MovementTypeIN:
		return "Entrada de stock"
	case MovementTypeOUT:
		return "Salida de stock"
	case MovementTypeADJUSTMENT:
		return "Ajuste de stock"
	case MovementTypeRETURN:
		return "Devolución de stock"
	}
	return "Movimiento de stock"
}

// StockMovement representa una entrada del libro de movimientos de stock.
// Es inmutable: una vez persistido nunca se actualiza ni se borra; las
// correcciones son movimientos nuevos.
type StockMovement struct {
	ID        string
	VariantID string
	Type      string
	Quantity  int
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}
