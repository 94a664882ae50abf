package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-api/internal/application/dto"
	"github.com/jhoicas/panaderia-api/internal/application/production"
)

// ProductionHandler maneja las peticiones HTTP de producción.
type ProductionHandler struct {
	planner *production.Service
}

// NewProductionHandler construye el handler.
func NewProductionHandler(planner *production.Service) *ProductionHandler {
	return &ProductionHandler{planner: planner}
}

// Calculate godoc
// @Summary      Calcular producción (vista previa, sin efectos)
// @Description  Expande la receta por tandas y devuelve por ingrediente el plan
//
//	FIFO de consumo, con faltantes cuando el stock no alcanza.
//
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CalculateProductionRequest  true  "recipe_id, batches, date opcional"
// @Success      200   {object}  dto.ProductionEstimateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/production/calculate [post]
func (h *ProductionHandler) Calculate(c *fiber.Ctx) error {
	var in dto.CalculateProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	asOf, err := parseDate(in.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	est, err := h.planner.Calculate(c.Context(), in.RecipeID, in.Batches, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProductionEstimateResponse(est))
}

// Register godoc
// @Summary      Registrar producción (confirmación atómica)
// @Description  Replanifica dentro de la transacción, descuenta materias primas
//
//	por FIFO, crea los lotes de producto terminado y descuenta empaque si la
//	etapa destino lo consume. Todo o nada.
//
// @Tags         production
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterProductionRequest  true  "recipe_id, batches, metadatos opcionales"
// @Success      201   {object}  dto.ProductionRunResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/production [post]
func (h *ProductionHandler) Register(c *fiber.Ctx) error {
	var in dto.RegisterProductionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	asOf, err := parseDate(in.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.planner.Register(c.Context(), production.RegisterInput{
		RecipeID:    in.RecipeID,
		Batches:     in.Batches,
		AsOf:        asOf,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Observation: in.Observation,
		LotCode:     in.LotCode,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewProductionRunResponse(result.Run, result.CreatedLots, asOf))
}
