// Package stage implementa el motor de etapas de producto terminado:
// FROZEN → {PACKAGED, BAKED} con consumo de empaque y recómputo de
// vencimiento, y la liberación directa desde congelado.
package stage

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/application/ports"
	"github.com/jhoicas/panaderia-api/internal/application/stock"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/allocation"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// MoveInput parámetros de un cambio de etapa.
type MoveInput struct {
	LotID       string
	Destination string // PACKAGED o BAKED
	Quantity    decimal.Decimal
	AsOf        time.Time
}

// MoveResult lote origen actualizado, lote destino y empaque consumido.
type MoveResult struct {
	UpdatedLot        *entity.Lot
	DestinationLot    *entity.Lot
	Transition        *entity.StageTransition
	PackagingConsumed decimal.Decimal
}

// Service motor de transición de etapas.
type Service struct {
	txRunner ports.TxRunner
}

// NewService construye el motor.
func NewService(txRunner ports.TxRunner) *Service {
	return &Service{txRunner: txRunner}
}

// Move traslada una cantidad de un lote congelado a una etapa destino. El
// empaque (cantidad × bolsas por unidad) se planifica antes de mover nada:
// si no alcanza, falla con InsufficientStockError sin tocar el lote origen.
// El destino es un lote nuevo, o el lote existente del mismo producto, etapa
// y día. Todo ocurre en una sola transacción.
func (s *Service) Move(ctx context.Context, in MoveInput) (*MoveResult, error) {
	if in.LotID == "" || !in.Quantity.IsInteger() || in.Quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Destination != entity.StagePackaged && in.Destination != entity.StageBaked {
		return nil, domain.ErrInvalidInput
	}

	var result *MoveResult
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		source, err := r.Lots.GetByIDForUpdate(in.LotID)
		if err != nil {
			return err
		}
		if source == nil {
			return domain.ErrNotFound
		}
		// Solo lotes congelados cambian de etapa.
		if source.OwnerType != entity.OwnerTypeProduct || source.Stage != entity.StageFrozen {
			return domain.ErrConflict
		}
		if source.State != entity.LotStateAvailable {
			return domain.ErrConflict
		}
		if in.Quantity.GreaterThan(source.Quantity) {
			return domain.NewInsufficientStock(source.OwnerType, source.OwnerID, source.Code, in.Quantity, source.Quantity)
		}

		product, err := r.Products.GetByID(source.OwnerID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		store := stock.NewLotStore(r.Lots, r.Movements)

		// Planificar empaque antes de cualquier escritura: el movimiento de
		// producto y el consumo de empaque se confirman juntos o ninguno.
		var packagingPlan allocation.Plan
		consumesPackaging := in.Destination == entity.StagePackaged && product.ConsumesPackaging()
		if consumesPackaging {
			need := product.BagsPerUnit.Mul(in.Quantity)
			candidates, err := r.Lots.ListCandidatesForUpdate(entity.OwnerTypeMaterial, product.PackagingMaterialID, in.AsOf)
			if err != nil {
				return err
			}
			packagingPlan, err = allocation.PlanFIFO(need, candidates)
			if err != nil {
				return err
			}
			if !packagingPlan.Satisfied {
				return domain.NewInsufficientStock(entity.OwnerTypeMaterial, product.PackagingMaterialID,
					"empaque de "+product.Name, need, packagingPlan.Taken())
			}
		}

		dest, err := r.Lots.FindByStageAndDay(source.OwnerID, in.Destination, in.AsOf)
		if err != nil {
			return err
		}
		if dest == nil {
			dest, err = store.CreateLot(stock.CreateLotInput{
				OwnerType: entity.OwnerTypeProduct,
				OwnerID:   source.OwnerID,
				Code:      destinationCode(source.Code, in.Destination),
				Quantity:  decimal.Zero,
				IngressAt: in.AsOf,
				ExpiresAt: destinationExpiry(product, source, in.AsOf),
				Stage:     in.Destination,
			})
			if err != nil {
				return err
			}
		}

		transition := &entity.StageTransition{
			SourceLotID:      source.ID,
			DestinationLotID: dest.ID,
			Stage:            in.Destination,
			Quantity:         in.Quantity,
			Date:             in.AsOf,
			CreatedAt:        in.AsOf,
		}
		if err := r.Transitions.Create(transition); err != nil {
			return err
		}
		ref := entity.MovementRef{Kind: entity.RefKindTransition, ID: transition.ID}
		reason := fmt.Sprintf("traslado de %s a %s", source.Code, in.Destination)

		updated, _, err := store.AdjustQuantity(source.ID, in.Quantity.Neg(), entity.MovementKindTraslado, reason, ref, in.AsOf)
		if err != nil {
			return err
		}
		dest, _, err = store.AdjustQuantity(dest.ID, in.Quantity, entity.MovementKindTraslado, reason, ref, in.AsOf)
		if err != nil {
			return err
		}

		packagingConsumed := decimal.Zero
		if consumesPackaging {
			pkgReason := fmt.Sprintf("empaque de %s", product.Name)
			for _, alloc := range packagingPlan.Allocations {
				if _, _, err := store.AdjustQuantity(alloc.LotID, alloc.Quantity.Neg(), entity.MovementKindSalida, pkgReason, ref, in.AsOf); err != nil {
					return err
				}
			}
			packagingConsumed = packagingPlan.Taken()
		}

		result = &MoveResult{
			UpdatedLot:        updated,
			DestinationLot:    dest,
			Transition:        transition,
			PackagingConsumed: packagingConsumed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Release descuenta directamente de un lote congelado sin pasar por etapa
// (merma o liberación directa), con la misma regla de atomicidad.
func (s *Service) Release(ctx context.Context, lotID string, quantity decimal.Decimal, asOf time.Time) (*entity.MovementEntry, error) {
	if lotID == "" || !quantity.IsInteger() || quantity.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var entry *entity.MovementEntry
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		lot, err := r.Lots.GetByIDForUpdate(lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if lot.OwnerType != entity.OwnerTypeProduct || lot.Stage != entity.StageFrozen {
			return domain.ErrConflict
		}
		release := &entity.OutboundRelease{
			ProductID: lot.OwnerID,
			Mode:      entity.ReleaseModeLot,
			Quantity:  quantity,
			Date:      asOf,
			CreatedAt: asOf,
		}
		if err := r.Releases.Create(release); err != nil {
			return err
		}
		store := stock.NewLotStore(r.Lots, r.Movements)
		ref := entity.MovementRef{Kind: entity.RefKindOutbound, ID: release.ID}
		_, e, err := store.AdjustQuantity(lotID, quantity.Neg(), entity.MovementKindSalida, "liberación directa desde congelado", ref, asOf)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// destinationCode deriva el código del lote destino del código origen.
func destinationCode(sourceCode, destination string) string {
	suffix := "HOR"
	if destination == entity.StagePackaged {
		suffix = "EMP"
	}
	return sourceCode + "-" + suffix
}

// destinationExpiry calcula el vencimiento del lote destino: con ancla en
// entrada a etapa corre desde asOf; con ancla en producción se hereda el
// vencimiento del lote origen.
func destinationExpiry(product *entity.Product, source *entity.Lot, asOf time.Time) *time.Time {
	if product.ShelfLifeAnchor == entity.ShelfLifeAnchorProduction {
		return source.ExpiresAt
	}
	if product.ShelfLifeDays <= 0 {
		return nil
	}
	exp := asOf.AddDate(0, 0, product.ShelfLifeDays)
	return &exp
}
