package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tiendapro/storefront-api/internal/application/stock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *stock.RegisterMovementUseCase
	Bulk             *stock.BulkUseCase
	List             *stock.ListMovementsUseCase
	JWTSecret        string
}

// Router registra las rutas de la API. Todas las rutas de stock requieren
// Bearer Token y un rol de administración (cualquier rol autenticado distinto
// de customer).
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	stockGroup := protected.Group("/stock", RequireRole("admin", "staff"))
	stockHandler := NewStockHandler(deps.RegisterMovement, deps.Bulk, deps.List)
	stockGroup.Get("/movements", stockHandler.ListMovements)
	stockGroup.Post("/movements", stockHandler.RegisterMovement)
	stockGroup.Post("/movements/bulk", stockHandler.BulkApply)
	stockGroup.Get("/movements/:id", stockHandler.GetMovement)
	stockGroup.Get("/variants/:id", stockHandler.GetVariantStock)
}
