package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-api/internal/application/outbound"
	"github.com/jhoicas/panaderia-api/internal/application/production"
	"github.com/jhoicas/panaderia-api/internal/application/stage"
	"github.com/jhoicas/panaderia-api/internal/application/stock"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Stock      *stock.Service
	Production *production.Service
	Stages     *stage.Service
	Outbound   *outbound.Service
	Products   repository.ProductRepository
	Lots       repository.LotRepository
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Lotes y movimientos
	lots := api.Group("/lots")
	lotHandler := NewLotHandler(deps.Stock, deps.Stages)
	lots.Post("/", lotHandler.CreateLot)
	lots.Get("/", lotHandler.ListLots)
	lots.Post("/:id/adjust", lotHandler.AdjustLot)
	lots.Get("/:id/movements", lotHandler.LotLedger)
	lots.Patch("/:id/active", lotHandler.SetActive)
	lots.Post("/:id/transition", lotHandler.Transition)
	lots.Post("/:id/release", lotHandler.ReleaseFrozen)
	api.Get("/movements", lotHandler.ListMovements)

	// Producción
	productionGroup := api.Group("/production")
	productionHandler := NewProductionHandler(deps.Production)
	productionGroup.Post("/calculate", productionHandler.Calculate)
	productionGroup.Post("/", productionHandler.Register)

	// Salidas de producto terminado
	outboundHandler := NewOutboundHandler(deps.Outbound, deps.Products, deps.Lots)
	api.Post("/outbound", outboundHandler.Release)
	api.Get("/outbound/availability", outboundHandler.Availability)
}
