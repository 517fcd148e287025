package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiendapro/storefront-api/internal/application/dto"
	appstock "github.com/tiendapro/storefront-api/internal/application/stock"
	"github.com/tiendapro/storefront-api/internal/domain"
	"github.com/tiendapro/storefront-api/internal/domain/entity"
	"github.com/tiendapro/storefront-api/internal/domain/repository"
	apphttp "github.com/tiendapro/storefront-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de los casos de uso
// ──────────────────────────────────────────────────────────────────────────────

type stubRegistrar struct {
	gotInput appstock.MovementInput
	result   *appstock.MovementResult
	err      error
}

func (s *stubRegistrar) RegisterMovement(_ context.Context, input appstock.MovementInput) (*appstock.MovementResult, error) {
	s.gotInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubBulk struct {
	gotAction string
	gotActor  string
	gotItems  []appstock.BulkItemInput
	result    *appstock.BulkResult
	err       error
}

func (s *stubBulk) BulkCreate(_ context.Context, actorID string, items []appstock.BulkItemInput) (*appstock.BulkResult, error) {
	s.gotAction, s.gotActor, s.gotItems = dto.BulkActionCreate, actorID, items
	return s.result, s.err
}

func (s *stubBulk) StockReset(_ context.Context, actorID string, items []appstock.BulkItemInput) (*appstock.BulkResult, error) {
	s.gotAction, s.gotActor, s.gotItems = dto.BulkActionStockReset, actorID, items
	return s.result, s.err
}

type stubLister struct {
	gotQuery appstock.ListQuery
	page     *appstock.MovementPage
	movement *entity.StockMovement
	variant  *entity.Variant
	err      error
}

func (s *stubLister) ListMovements(_ context.Context, q appstock.ListQuery) (*appstock.MovementPage, error) {
	s.gotQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func (s *stubLister) GetMovement(_ context.Context, _ string) (*entity.StockMovement, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.movement, nil
}

func (s *stubLister) GetVariantStock(_ context.Context, _ string) (*entity.Variant, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.variant, nil
}

// buildStockApp monta las rutas de stock con un middleware que simula la
// sesión ya autenticada (locals cargados por AuthMiddleware en producción).
func buildStockApp(registrar *stubRegistrar, bulk *stubBulk, lister *stubLister, authenticated bool) *fiber.App {
	app := fiber.New()
	if authenticated {
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(apphttp.LocalUserID, "user-1")
			c.Locals(apphttp.LocalRole, "admin")
			return c.Next()
		})
	}
	h := apphttp.NewStockHandler(registrar, bulk, lister)
	app.Get("/api/stock/movements", h.ListMovements)
	app.Post("/api/stock/movements", h.RegisterMovement)
	app.Post("/api/stock/movements/bulk", h.BulkApply)
	app.Get("/api/stock/movements/:id", h.GetMovement)
	app.Get("/api/stock/variants/:id", h.GetVariantStock)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func sampleResult() *appstock.MovementResult {
	return &appstock.MovementResult{
		Movement: &entity.StockMovement{
			ID:        "mov-1",
			VariantID: "var-1",
			Type:      entity.MovementTypeOUT,
			Quantity:  3,
			Reason:    "Salida de stock",
			CreatedBy: "user-1",
			CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		NewStock: 7,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/stock/movements
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_Retorna201(t *testing.T) {
	registrar := &stubRegistrar{result: sampleResult()}
	app := buildStockApp(registrar, &stubBulk{}, &stubLister{}, true)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", dto.RegisterMovementRequest{
		VariantID: "var-1", Type: "OUT", Quantity: 3, Reason: "venta pedido #12",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var body dto.MovementResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "mov-1", body.Movement.ID)
	assert.Equal(t, 7, body.NewStock)

	// El actor sale del token, nunca del body.
	assert.Equal(t, "user-1", registrar.gotInput.ActorID)
	assert.Equal(t, "venta pedido #12", registrar.gotInput.Reason)
}

func TestRegisterMovement_SinSesion_Retorna401(t *testing.T) {
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, &stubLister{}, false)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", dto.RegisterMovementRequest{
		VariantID: "var-1", Type: "OUT", Quantity: 3,
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRegisterMovement_MapeoDeErroresDeDominio(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"entrada inválida", domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION"},
		{"variante inexistente", domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"stock insuficiente", domain.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"conflicto concurrente", fmt.Errorf("%w: agotado", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := buildStockApp(&stubRegistrar{err: tc.err}, &stubBulk{}, &stubLister{}, true)

			resp := doJSON(t, app, http.MethodPost, "/api/stock/movements", dto.RegisterMovementRequest{
				VariantID: "var-1", Type: "OUT", Quantity: 3,
			})
			defer resp.Body.Close()

			assert.Equal(t, tc.wantStatus, resp.StatusCode)
			var body dto.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.wantCode, body.Code)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// POST /api/stock/movements/bulk
// ──────────────────────────────────────────────────────────────────────────────

func TestBulkApply_BulkCreate(t *testing.T) {
	bulk := &stubBulk{result: &appstock.BulkResult{
		Applied: []appstock.MovementResult{*sampleResult()},
		Skipped: 2,
	}}
	app := buildStockApp(&stubRegistrar{}, bulk, &stubLister{}, true)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements/bulk", dto.BulkApplyRequest{
		Action: dto.BulkActionCreate,
		Items: []dto.BulkStockItem{
			{VariantID: "var-1", Type: "OUT", Quantity: 3},
			{VariantID: "", Type: "IN", Quantity: 1},
			{VariantID: "var-2", Type: "OUT", Quantity: 9999},
		},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.BulkApplyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.AppliedCount)
	assert.Equal(t, 2, body.SkippedCount)
	require.Len(t, body.Results, 1)
	assert.Equal(t, "mov-1", body.Results[0].Movement.ID)

	assert.Equal(t, dto.BulkActionCreate, bulk.gotAction)
	assert.Equal(t, "user-1", bulk.gotActor)
	assert.Len(t, bulk.gotItems, 3, "el handler no filtra ítems; eso es del caso de uso")
}

func TestBulkApply_StockReset(t *testing.T) {
	nuevo := 12
	bulk := &stubBulk{result: &appstock.BulkResult{Skipped: 1}}
	app := buildStockApp(&stubRegistrar{}, bulk, &stubLister{}, true)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements/bulk", dto.BulkApplyRequest{
		Action: dto.BulkActionStockReset,
		Items:  []dto.BulkStockItem{{VariantID: "var-1", NewStock: &nuevo}},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, dto.BulkActionStockReset, bulk.gotAction)
	require.Len(t, bulk.gotItems, 1)
	require.NotNil(t, bulk.gotItems[0].NewStock)
	assert.Equal(t, 12, *bulk.gotItems[0].NewStock)
}

func TestBulkApply_AccionDesconocida_Retorna400(t *testing.T) {
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, &stubLister{}, true)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements/bulk", dto.BulkApplyRequest{
		Action: "delete_all",
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestBulkApply_ConflictoAgotado_Retorna409(t *testing.T) {
	bulk := &stubBulk{
		result: &appstock.BulkResult{},
		err:    fmt.Errorf("%w: agotado", domain.ErrConflict),
	}
	app := buildStockApp(&stubRegistrar{}, bulk, &stubLister{}, true)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/movements/bulk", dto.BulkApplyRequest{
		Action: dto.BulkActionCreate,
		Items:  []dto.BulkStockItem{{VariantID: "var-1", Type: "OUT", Quantity: 1}},
	})
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/stock/movements
// ──────────────────────────────────────────────────────────────────────────────

func TestListMovements_RespuestaCompleta(t *testing.T) {
	lister := &stubLister{page: &appstock.MovementPage{
		Movements: []*entity.StockMovement{sampleResult().Movement},
		Total:     41,
		Page:      2,
		Limit:     20,
		Pages:     3,
		HasNext:   true,
		HasPrev:   true,
		Summary: []repository.TypeSummary{
			{Type: entity.MovementTypeIN, Count: 30, TotalQuantity: 120},
			{Type: entity.MovementTypeOUT, Count: 11, TotalQuantity: 44},
		},
	}}
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, lister, true)

	resp := doJSON(t, app, http.MethodGet,
		"/api/stock/movements?variant_id=var-1&type=OUT&actor_id=user-9&date_from=2026-03-01&page=2&limit=20", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.MovementListResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Movements, 1)
	assert.Equal(t, "mov-1", body.Movements[0].ID)
	assert.Equal(t, 41, body.Pagination.Total)
	assert.Equal(t, 3, body.Pagination.Pages)
	assert.True(t, body.Pagination.HasNext)
	assert.True(t, body.Pagination.HasPrev)
	require.Len(t, body.Summary, 2)
	assert.Equal(t, dto.TypeSummaryDTO{Count: 30, TotalQuantity: 120}, body.Summary[entity.MovementTypeIN])
	assert.Equal(t, dto.TypeSummaryDTO{Count: 11, TotalQuantity: 44}, body.Summary[entity.MovementTypeOUT])

	// Los query params llegan íntegros al caso de uso.
	assert.Equal(t, "var-1", lister.gotQuery.VariantID)
	assert.Equal(t, "OUT", lister.gotQuery.Type)
	assert.Equal(t, "user-9", lister.gotQuery.ActorID)
	require.NotNil(t, lister.gotQuery.DateFrom)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *lister.gotQuery.DateFrom)
	assert.Equal(t, 2, lister.gotQuery.Page)
	assert.Equal(t, 20, lister.gotQuery.Limit)
}

func TestListMovements_FechaInvalida_Retorna400(t *testing.T) {
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, &stubLister{}, true)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements?date_from=ayer", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION", body.Code)
}

func TestListMovements_TipoInvalido_Retorna400(t *testing.T) {
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, &stubLister{err: domain.ErrInvalidInput}, true)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements?type=TRANSFER", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/stock/movements/:id  y  GET /api/stock/variants/:id
// ──────────────────────────────────────────────────────────────────────────────

func TestGetMovement_Retorna200(t *testing.T) {
	lister := &stubLister{movement: sampleResult().Movement}
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, lister, true)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements/mov-1", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.StockMovementDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "mov-1", body.ID)
	assert.Equal(t, "var-1", body.VariantID)
}

func TestGetMovement_NoEncontrado_Retorna404(t *testing.T) {
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, &stubLister{err: domain.ErrNotFound}, true)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/movements/mov-x", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetVariantStock_Retorna200(t *testing.T) {
	lister := &stubLister{variant: &entity.Variant{
		ID:        "var-1",
		Stock:     42,
		UpdatedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}}
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, lister, true)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/variants/var-1", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body dto.VariantStockResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "var-1", body.VariantID)
	assert.Equal(t, 42, body.Stock)
}

func TestGetVariantStock_NoEncontrado_Retorna404(t *testing.T) {
	app := buildStockApp(&stubRegistrar{}, &stubBulk{}, &stubLister{err: domain.ErrNotFound}, true)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/variants/var-x", nil)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
