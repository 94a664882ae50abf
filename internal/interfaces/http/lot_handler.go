package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/panaderia-api/internal/application/dto"
	"github.com/jhoicas/panaderia-api/internal/application/stage"
	"github.com/jhoicas/panaderia-api/internal/application/stock"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

// LotHandler maneja las peticiones HTTP de lotes, ajustes y etapas.
type LotHandler struct {
	stock  *stock.Service
	stages *stage.Service
}

// NewLotHandler construye el handler.
func NewLotHandler(stockSvc *stock.Service, stages *stage.Service) *LotHandler {
	return &LotHandler{stock: stockSvc, stages: stages}
}

// CreateLot godoc
// @Summary      Ingresar un lote (materia prima o producto terminado)
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "owner_type, owner_id, code, quantity"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) CreateLot(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	asOf, err := parseDate(in.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	var expiresAt *time.Time
	if in.Expiration != "" {
		exp, err := parseDate(in.Expiration, time.Time{})
		if err != nil {
			return respondError(c, err)
		}
		expiresAt = &exp
	}
	lot, err := h.stock.CreateLot(c.Context(), stock.CreateLotInput{
		OwnerType: in.OwnerType,
		OwnerID:   in.OwnerID,
		Code:      in.Code,
		Quantity:  in.Quantity,
		IngressAt: asOf,
		ExpiresAt: expiresAt,
		Stage:     in.Stage,
		Reason:    in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLotResponse(lot, asOf))
}

// ListLots godoc
// @Summary      Listar lotes de un dueño (incluye agotados e inactivos)
// @Tags         lots
// @Produce      json
// @Param        owner_type  query  string  true  "MATERIAL o PRODUCT"
// @Param        owner_id    query  string  true  "id del dueño"
// @Success      200  {array}   dto.LotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) ListLots(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()
	lots, err := h.stock.ListLots(c.Context(), c.Query("owner_type"), c.Query("owner_id"), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	now := time.Now()
	out := make([]dto.LotResponse, 0, len(lots))
	for _, lot := range lots {
		out = append(out, dto.NewLotResponse(lot, now))
	}
	return c.JSON(fiber.Map{"total": len(out), "lots": out})
}

// AdjustLot godoc
// @Summary      Ajuste manual firmado sobre un lote
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "id del lote"
// @Param        body  body  dto.AdjustLotRequest  true  "quantity firmada, reason"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/adjust [post]
func (h *LotHandler) AdjustLot(c *fiber.Ctx) error {
	var in dto.AdjustLotRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	asOf, err := parseDate(in.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	entry, err := h.stock.AdjustLot(c.Context(), c.Params("id"), in.Quantity, in.Reason, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(entry))
}

// SetActive godoc
// @Summary      Habilitar o deshabilitar un lote
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "id del lote"
// @Param        body  body  dto.SetLotActiveRequest  true  "active"
// @Success      200   {object}  dto.LotResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/active [patch]
func (h *LotHandler) SetActive(c *fiber.Ctx) error {
	var in dto.SetLotActiveRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	now := time.Now()
	lot, err := h.stock.SetLotActive(c.Context(), c.Params("id"), in.Active, now)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewLotResponse(lot, now))
}

// Transition godoc
// @Summary      Trasladar un lote congelado a etapa PACKAGED o BAKED
// @Description  Consume empaque (cantidad × bolsas por unidad) cuando el
//
//	producto lo requiere; el traslado y el empaque se confirman juntos o ninguno.
//
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "id del lote origen"
// @Param        body  body  dto.TransitionRequest  true  "destination, quantity"
// @Success      200   {object}  dto.TransitionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/transition [post]
func (h *LotHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	asOf, err := parseDate(in.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	result, err := h.stages.Move(c.Context(), stage.MoveInput{
		LotID:       c.Params("id"),
		Destination: in.Destination,
		Quantity:    in.Quantity,
		AsOf:        asOf,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.TransitionResponse{
		TransitionID:      result.Transition.ID,
		SourceLot:         dto.NewLotResponse(result.UpdatedLot, asOf),
		DestinationLot:    dto.NewLotResponse(result.DestinationLot, asOf),
		PackagingConsumed: result.PackagingConsumed,
	})
}

// ReleaseFrozen godoc
// @Summary      Liberación directa desde un lote congelado (merma/salida)
// @Tags         lots
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "id del lote"
// @Param        body  body  dto.FrozenReleaseRequest  true  "quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/release [post]
func (h *LotHandler) ReleaseFrozen(c *fiber.Ctx) error {
	var in dto.FrozenReleaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	asOf, err := parseDate(in.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	entry, err := h.stages.Release(c.Context(), c.Params("id"), in.Quantity, asOf)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(entry))
}

// LotLedger godoc
// @Summary      Libro completo de un lote con su saldo reconstruido
// @Description  El saldo reconstruido suma los asientos firmados del lote y
//
//	coincide con su cantidad actual; la respuesta permite auditarlo.
//
// @Tags         lots
// @Produce      json
// @Param        id  path  string  true  "id del lote"
// @Success      200  {object}  dto.LotLedgerResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id}/movements [get]
func (h *LotHandler) LotLedger(c *fiber.Ctx) error {
	lot, entries, balance, err := h.stock.LotLedger(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewMovementResponse(e))
	}
	return c.JSON(dto.LotLedgerResponse{
		Lot:           dto.NewLotResponse(lot, time.Now()),
		LedgerBalance: balance,
		Movements:     out,
	})
}

// ListMovements godoc
// @Summary      Listar movimientos del libro de inventario
// @Tags         movements
// @Produce      json
// @Param        lot_id    query  string  false  "filtrar por lote"
// @Param        owner_id  query  string  false  "filtrar por dueño del lote"
// @Param        kind      query  string  false  "ENTRADA, SALIDA, AJUSTE o TRASLADO"
// @Success      200  {array}   dto.MovementResponse
// @Router       /api/movements [get]
func (h *LotHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, domain.ErrInvalidInput)
	}
	page.DefaultPage()

	filter := repository.MovementFilter{
		LotID:   c.Query("lot_id"),
		OwnerID: c.Query("owner_id"),
		Kind:    c.Query("kind"),
		RefKind: c.Query("ref_kind"),
		RefID:   c.Query("ref_id"),
		Limit:   page.Limit,
		Offset:  page.Offset,
	}
	if from := c.Query("from"); from != "" {
		t, err := parseDate(from, time.Time{})
		if err != nil {
			return respondError(c, err)
		}
		filter.From = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := parseDate(to, time.Time{})
		if err != nil {
			return respondError(c, err)
		}
		filter.To = &t
	}
	entries, err := h.stock.ListMovements(c.Context(), filter)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewMovementResponse(e))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}
