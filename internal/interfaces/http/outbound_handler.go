package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/application/dto"
	"github.com/jhoicas/panaderia-api/internal/application/outbound"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
	"github.com/jhoicas/panaderia-api/pkg/units"
)

// OutboundHandler maneja las salidas de producto terminado.
type OutboundHandler struct {
	outbound *outbound.Service
	products repository.ProductRepository
	lots     repository.LotRepository
}

// NewOutboundHandler construye el handler. El repositorio de productos
// resuelve la conversión paquete→unidad en el borde: el core solo recibe
// unidades base.
func NewOutboundHandler(outboundSvc *outbound.Service, products repository.ProductRepository, lots repository.LotRepository) *OutboundHandler {
	return &OutboundHandler{outbound: outboundSvc, products: products, lots: lots}
}

// Release godoc
// @Summary      Salida de producto terminado (venta o liberación)
// @Description  mode=FIFO consume por orden de ingreso sobre etapas vendibles,
//
//	con etapa preferida opcional; mode=LOT descuenta del lote indicado.
//	quantity en unidades base o packages en paquetes del producto.
//
// @Tags         outbound
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReleaseStockRequest  true  "mode, product_id o lot_id, quantity o packages"
// @Success      201   {object}  dto.ReleaseStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/outbound [post]
func (h *OutboundHandler) Release(c *fiber.Ctx) error {
	var in dto.ReleaseStockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	asOf, err := parseDate(in.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}

	quantity, err := h.resolveUnits(in)
	if err != nil {
		return respondError(c, err)
	}

	var result *outbound.ReleaseResult
	switch in.Mode {
	case entity.ReleaseModeFIFO:
		result, err = h.outbound.ReleaseFIFO(c.Context(), in.ProductID, quantity, in.PreferredStage, asOf)
	case entity.ReleaseModeLot:
		result, err = h.outbound.ReleaseFromLot(c.Context(), in.LotID, quantity, asOf)
	default:
		err = domain.ErrInvalidInput
	}
	if err != nil {
		return respondError(c, err)
	}

	out := dto.ReleaseStockResponse{
		ReleaseID: result.Release.ID,
		ProductID: result.Release.ProductID,
		Mode:      result.Release.Mode,
		Quantity:  result.Release.Quantity,
		Date:      result.Release.Date,
	}
	for _, alloc := range result.Consumed {
		out.Consumed = append(out.Consumed, dto.PlannedLotResponse{
			LotID:     alloc.LotID,
			LotCode:   alloc.LotCode,
			Quantity:  alloc.Quantity,
			ExpiresAt: alloc.ExpiresAt,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Availability godoc
// @Summary      Stock vendible de un producto (unidades y paquetes completos)
// @Description  Lista los lotes en etapas vendibles en orden FIFO. Reporta el
//
//	total en unidades base, los paquetes completos que alcanza a armar y las
//	unidades sueltas que no cierran paquete.
//
// @Tags         outbound
// @Produce      json
// @Param        product_id  query  string  true   "id del producto"
// @Param        stage       query  string  false  "PACKAGED o BAKED"
// @Param        date        query  string  false  "YYYY-MM-DD, default hoy"
// @Success      200  {object}  dto.AvailabilityResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/outbound/availability [get]
func (h *OutboundHandler) Availability(c *fiber.Ctx) error {
	productID := c.Query("product_id")
	if productID == "" {
		return respondError(c, domain.ErrInvalidInput)
	}
	stage := c.Query("stage")
	if stage != "" && stage != entity.StagePackaged && stage != entity.StageBaked {
		return respondError(c, domain.ErrInvalidInput)
	}
	asOf, err := parseDate(c.Query("date"), time.Now())
	if err != nil {
		return respondError(c, err)
	}

	product, err := h.products.GetByID(productID)
	if err != nil {
		return respondError(c, err)
	}
	if product == nil {
		return respondError(c, domain.ErrNotFound)
	}

	lots, err := h.lots.ListSellable(productID, stage, asOf)
	if err != nil {
		return respondError(c, err)
	}
	total := decimal.Zero
	out := make([]dto.LotResponse, 0, len(lots))
	for _, lot := range lots {
		total = total.Add(lot.Quantity)
		out = append(out, dto.NewLotResponse(lot, asOf))
	}
	// Sin tamaño de paquete todo queda como unidades sueltas.
	full, loose := decimal.Zero, total
	if product.UnitsPerPackage > 0 {
		loose = total.Mod(decimal.NewFromInt(product.UnitsPerPackage))
		if full, err = units.ToPackages(total.Sub(loose), product.UnitsPerPackage); err != nil {
			return respondError(c, err)
		}
	}
	return c.JSON(dto.AvailabilityResponse{
		ProductID:    productID,
		Stage:        stage,
		TotalUnits:   total,
		FullPackages: full,
		LooseUnits:   loose,
		Lots:         out,
	})
}

// resolveUnits devuelve la cantidad en unidades base: quantity directa, o
// packages convertidos con el tamaño de paquete del producto.
func (h *OutboundHandler) resolveUnits(in dto.ReleaseStockRequest) (decimal.Decimal, error) {
	if in.Packages.IsZero() {
		return in.Quantity, nil
	}
	if !in.Quantity.IsZero() {
		return decimal.Zero, domain.ErrInvalidInput
	}
	productID := in.ProductID
	if productID == "" && in.LotID != "" {
		lot, err := h.lots.GetByID(in.LotID)
		if err != nil {
			return decimal.Zero, err
		}
		if lot == nil {
			return decimal.Zero, domain.ErrNotFound
		}
		productID = lot.OwnerID
	}
	product, err := h.products.GetByID(productID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, domain.ErrNotFound
	}
	return units.ToBaseUnits(in.Packages, product.UnitsPerPackage)
}
