// Package outbound implementa la salida de producto terminado: por FIFO
// sobre las etapas vendibles o contra un lote elegido por el operador.
// Ambas operaciones reciben unidades base; la conversión unidad⇄paquete se
// resuelve en el borde (pkg/units).
package outbound

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/application/ports"
	"github.com/jhoicas/panaderia-api/internal/application/stock"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/allocation"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// ReleaseResult salida confirmada con el detalle de lotes consumidos.
type ReleaseResult struct {
	Release  *entity.OutboundRelease
	Consumed []allocation.Allocation
}

// Service asignador de salidas.
type Service struct {
	txRunner ports.TxRunner
}

// NewService construye el asignador.
func NewService(txRunner ports.TxRunner) *Service {
	return &Service{txRunner: txRunner}
}

// ReleaseFIFO despacha unidades de un producto por FIFO sobre lotes en etapa
// vendible (PACKAGED/BAKED) y estado AVAILABLE. Si preferredStage tiene stock
// suficiente, los candidatos se restringen a esa etapa; si no, se cae al FIFO
// sobre ambas etapas por fecha de ingreso. El faltante al confirmar es error
// (a diferencia del cálculo, esta operación muta).
func (s *Service) ReleaseFIFO(ctx context.Context, productID string, units decimal.Decimal, preferredStage string, asOf time.Time) (*ReleaseResult, error) {
	if productID == "" || !units.IsInteger() || units.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if preferredStage != "" && preferredStage != entity.StagePackaged && preferredStage != entity.StageBaked {
		return nil, domain.ErrInvalidInput
	}

	var result *ReleaseResult
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		var plan allocation.Plan
		planned := false
		if preferredStage != "" {
			candidates, err := r.Lots.ListSellableForUpdate(productID, preferredStage, asOf)
			if err != nil {
				return err
			}
			p, err := allocation.PlanFIFO(units, candidates)
			if err != nil {
				return err
			}
			if p.Satisfied {
				plan = p
				planned = true
			}
		}
		if !planned {
			candidates, err := r.Lots.ListSellableForUpdate(productID, "", asOf)
			if err != nil {
				return err
			}
			p, err := allocation.PlanFIFO(units, candidates)
			if err != nil {
				return err
			}
			if !p.Satisfied {
				product, err := r.Products.GetByID(productID)
				if err != nil {
					return err
				}
				name := ""
				if product != nil {
					name = product.Name
				}
				return domain.NewInsufficientStock(entity.OwnerTypeProduct, productID, name, units, p.Taken())
			}
			plan = p
		}

		release := &entity.OutboundRelease{
			ProductID: productID,
			Mode:      entity.ReleaseModeFIFO,
			Quantity:  units,
			Date:      asOf,
			CreatedAt: asOf,
		}
		if err := r.Releases.Create(release); err != nil {
			return err
		}
		store := stock.NewLotStore(r.Lots, r.Movements)
		ref := entity.MovementRef{Kind: entity.RefKindOutbound, ID: release.ID}
		for _, alloc := range plan.Allocations {
			if _, _, err := store.AdjustQuantity(alloc.LotID, alloc.Quantity.Neg(), entity.MovementKindSalida, "salida de producto terminado", ref, asOf); err != nil {
				return err
			}
		}
		result = &ReleaseResult{Release: release, Consumed: plan.Allocations}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReleaseFromLot despacha unidades contra un lote puntual elegido por el
// operador. El lote debe estar en etapa vendible; pedir más de lo que tiene
// es InsufficientStockError.
func (s *Service) ReleaseFromLot(ctx context.Context, lotID string, units decimal.Decimal, asOf time.Time) (*ReleaseResult, error) {
	if lotID == "" || !units.IsInteger() || units.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var result *ReleaseResult
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		lot, err := r.Lots.GetByIDForUpdate(lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if lot.OwnerType != entity.OwnerTypeProduct || (lot.Stage != entity.StagePackaged && lot.Stage != entity.StageBaked) {
			return domain.ErrConflict
		}
		if units.GreaterThan(lot.Quantity) {
			return domain.NewInsufficientStock(lot.OwnerType, lot.OwnerID, lot.Code, units, lot.Quantity)
		}
		release := &entity.OutboundRelease{
			ProductID: lot.OwnerID,
			Mode:      entity.ReleaseModeLot,
			Quantity:  units,
			Date:      asOf,
			CreatedAt: asOf,
		}
		if err := r.Releases.Create(release); err != nil {
			return err
		}
		store := stock.NewLotStore(r.Lots, r.Movements)
		ref := entity.MovementRef{Kind: entity.RefKindOutbound, ID: release.ID}
		if _, _, err := store.AdjustQuantity(lotID, units.Neg(), entity.MovementKindSalida, "salida desde lote elegido", ref, asOf); err != nil {
			return err
		}
		result = &ReleaseResult{
			Release: release,
			Consumed: []allocation.Allocation{{
				LotID: lot.ID, LotCode: lot.Code, Quantity: units, ExpiresAt: lot.ExpiresAt,
			}},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
