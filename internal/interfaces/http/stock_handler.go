package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tiendapro/storefront-api/internal/application/dto"
	appstock "github.com/tiendapro/storefront-api/internal/application/stock"
	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
)

// Contratos mínimos que necesita el handler; los cumplen los casos de uso de
// internal/application/stock. El uso de interfaces permite tests sin DB.
type movementRegistrar interface {
	RegisterMovement(ctx context.Context, input appstock.MovementInput) (*appstock.MovementResult, error)
}

type bulkApplier interface {
	BulkCreate(ctx context.Context, actorID string, items []appstock.BulkItemInput) (*appstock.BulkResult, error)
	StockReset(ctx context.Context, actorID string, items []appstock.BulkItemInput) (*appstock.BulkResult, error)
}

type movementLister interface {
	ListMovements(ctx context.Context, q appstock.ListQuery) (*appstock.MovementPage, error)
	GetMovement(ctx context.Context, id string) (*entity.StockMovement, error)
	GetVariantStock(ctx context.Context, variantID string) (*entity.Variant, error)
}

// StockHandler maneja las peticiones HTTP del libro de movimientos de stock
// (protegido: solo roles de administración).
type StockHandler struct {
	registrar movementRegistrar
	bulk      bulkApplier
	lister    movementLister
}

// NewStockHandler construye el handler.
func NewStockHandler(registrar movementRegistrar, bulk bulkApplier, lister movementLister) *StockHandler {
	return &StockHandler{registrar: registrar, bulk: bulk, lister: lister}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "variant_id, type (IN|OUT|ADJUSTMENT|RETURN), quantity > 0, reason opcional"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RegisterMovement(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.registrar.RegisterMovement(c.Context(), appstock.MovementInput{
		VariantID: in.VariantID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		Reason:    in.Reason,
		ActorID:   actorID,
	})
	if err != nil {
		return movementError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(*result))
}

// BulkApply godoc
// @Summary      Operación masiva sobre el stock (bulk_create | stock_reset)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkApplyRequest  true  "action y lista ordenada de items; los items inválidos se omiten"
// @Success      200   {object}  dto.BulkApplyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements/bulk [post]
func (h *StockHandler) BulkApply(c *fiber.Ctx) error {
	actorID := GetUserID(c)
	if actorID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.BulkApplyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	items := make([]appstock.BulkItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, appstock.BulkItemInput{
			VariantID: it.VariantID,
			Type:      it.Type,
			Quantity:  it.Quantity,
			Reason:    it.Reason,
			NewStock:  it.NewStock,
		})
	}

	var result *appstock.BulkResult
	var err error
	switch in.Action {
	case dto.BulkActionCreate:
		result, err = h.bulk.BulkCreate(c.Context(), actorID, items)
	case dto.BulkActionStockReset:
		result, err = h.bulk.StockReset(c.Context(), actorID, items)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "action debe ser bulk_create o stock_reset"})
	}
	if err != nil {
		// Fallo de lote completo (conflicto agotado o infraestructura):
		// el avance parcial ya quedó confirmado ítem a ítem.
		if errors.Is(err, domain.ErrConflict) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto concurrente, reintente la operación"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	resp := dto.BulkApplyResponse{
		AppliedCount: len(result.Applied),
		SkippedCount: result.Skipped,
		Results:      make([]dto.MovementResponse, 0, len(result.Applied)),
	}
	for _, r := range result.Applied {
		resp.Results = append(resp.Results, toMovementResponse(r))
	}
	return c.JSON(resp)
}

// ListMovements godoc
// @Summary      Historial de movimientos con filtros, paginación y resumen por tipo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        variant_id  query  string  false  "Filtrar por variante"
// @Param        type        query  string  false  "IN | OUT | ADJUSTMENT | RETURN"
// @Param        actor_id    query  string  false  "Filtrar por usuario que registró"
// @Param        date_from   query  string  false  "RFC 3339 o YYYY-MM-DD"
// @Param        date_to     query  string  false  "RFC 3339 o YYYY-MM-DD"
// @Param        page        query  int     false  "Página (>=1)"
// @Param        limit       query  int     false  "Tamaño de página (1-100)"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var req dto.MovementListRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "query params inválidos"})
	}

	dateFrom, err := parseDateParam(req.DateFrom)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_from inválido"})
	}
	dateTo, err := parseDateParam(req.DateTo)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "date_to inválido"})
	}

	page, err := h.lister.ListMovements(c.Context(), appstock.ListQuery{
		VariantID: req.VariantID,
		Type:      req.Type,
		ActorID:   req.ActorID,
		DateFrom:  dateFrom,
		DateTo:    dateTo,
		Page:      req.Page,
		Limit:     req.Limit,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "filtros inválidos"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}

	resp := dto.MovementListResponse{
		Movements: make([]dto.StockMovementDTO, 0, len(page.Movements)),
		Pagination: dto.Pagination{
			Page:    page.Page,
			Limit:   page.Limit,
			Total:   page.Total,
			Pages:   page.Pages,
			HasNext: page.HasNext,
			HasPrev: page.HasPrev,
		},
		Summary: make(map[string]dto.TypeSummaryDTO, len(page.Summary)),
	}
	for _, m := range page.Movements {
		resp.Movements = append(resp.Movements, toMovementDTO(m))
	}
	for _, s := range page.Summary {
		resp.Summary[s.Type] = dto.TypeSummaryDTO{Count: s.Count, TotalQuantity: s.TotalQuantity}
	}
	return c.JSON(resp)
}

// GetMovement godoc
// @Summary      Obtener un movimiento por id
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockMovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/movements/{id} [get]
func (h *StockHandler) GetMovement(c *fiber.Ctx) error {
	mov, err := h.lister.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return movementError(c, err)
	}
	return c.JSON(toMovementDTO(mov))
}

// GetVariantStock godoc
// @Summary      Stock actual de una variante
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.VariantStockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/variants/{id} [get]
func (h *StockHandler) GetVariantStock(c *fiber.Ctx) error {
	variant, err := h.lister.GetVariantStock(c.Context(), c.Params("id"))
	if err != nil {
		return movementError(c, err)
	}
	return c.JSON(dto.VariantStockResponse{
		VariantID: variant.ID,
		Stock:     variant.Stock,
		UpdatedAt: variant.UpdatedAt,
	})
}

// movementError mapea errores de dominio a respuestas HTTP.
func movementError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos"})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: "stock insuficiente"})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto concurrente, reintente la operación"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func toMovementDTO(m *entity.StockMovement) dto.StockMovementDTO {
	return dto.StockMovementDTO{
		ID:        m.ID,
		VariantID: m.VariantID,
		Type:      m.Type,
		Quantity:  m.Quantity,
		Reason:    m.Reason,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
}

func toMovementResponse(r appstock.MovementResult) dto.MovementResponse {
	return dto.MovementResponse{
		Movement: toMovementDTO(r.Movement),
		NewStock: r.NewStock,
	}
}

// parseDateParam acepta RFC 3339 o fecha simple YYYY-MM-DD. Cadena vacía -> nil.
func parseDateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
