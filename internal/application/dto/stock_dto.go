package dto

import "time"

// RegisterMovementRequest body para POST /api/stock/movements.
type RegisterMovementRequest struct {
	VariantID string `json:"variant_id"`
	Type      string `json:"type"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason,omitempty"`
}

// StockMovementDTO representación JSON de una entrada del libro de movimientos.
type StockMovementDTO struct {
	ID        string    `json:"id"`
	VariantID string    `json:"variant_id"`
	Type      string    `json:"type"`
	Quantity  int       `json:"quantity"`
	Reason    string    `json:"reason"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// MovementResponse respuesta de un movimiento aplicado: la entrada creada y
// el stock resultante de la variante.
type MovementResponse struct {
	Movement StockMovementDTO `json:"movement"`
	NewStock int              `json:"new_stock"`
}

// Acciones soportadas por POST /api/stock/movements/bulk.
const (
	BulkActionCreate     = "bulk_create"
	BulkActionStockReset = "stock_reset"
)

// BulkStockItem ítem de una operación masiva. Para bulk_create se usan
// variant_id, type, quantity y reason; para stock_reset, variant_id y new_stock.
type BulkStockItem struct {
	VariantID string `json:"variant_id"`
	Type      string `json:"type,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	Reason    string `json:"reason,omitempty"`
	NewStock  *int   `json:"new_stock,omitempty"`
}

// BulkApplyRequest body para POST /api/stock/movements/bulk.
type BulkApplyRequest struct {
	Action string          `json:"action"`
	Items  []BulkStockItem `json:"items"`
}

// BulkApplyResponse resultado de una operación masiva: solo los ítems
// aplicados; los omitidos se cuentan pero no se detallan (el porqué queda en
// los logs del servidor).
type BulkApplyResponse struct {
	AppliedCount int                `json:"applied_count"`
	SkippedCount int                `json:"skipped_count"`
	Results      []MovementResponse `json:"results"`
}

// MovementListRequest query params para GET /api/stock/movements.
// Fechas en formato RFC 3339 o YYYY-MM-DD.
type MovementListRequest struct {
	VariantID string `query:"variant_id"`
	Type      string `query:"type"`
	ActorID   string `query:"actor_id"`
	DateFrom  string `query:"date_from"`
	DateTo    string `query:"date_to"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}

// TypeSummaryDTO agregado por tipo sobre el conjunto filtrado completo
// (independiente de la página solicitada).
type TypeSummaryDTO struct {
	Count         int `json:"count"`
	TotalQuantity int `json:"total_quantity"`
}

// MovementListResponse respuesta de GET /api/stock/movements.
type MovementListResponse struct {
	Movements  []StockMovementDTO        `json:"movements"`
	Pagination Pagination                `json:"pagination"`
	Summary    map[string]TypeSummaryDTO `json:"summary"`
}

// VariantStockResponse respuesta de GET /api/stock/variants/:id.
type VariantStockResponse struct {
	VariantID string    `json:"variant_id"`
	Stock     int       `json:"stock"`
	UpdatedAt time.Time `json:"updated_at"`
}
