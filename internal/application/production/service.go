// Package production implementa el planificador de producción: expansión de
// receta × tandas, vista previa FIFO de consumo y confirmación atómica.
package production

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
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

// IngredientEstimate resultado por ingrediente de un cálculo de producción.
type IngredientEstimate struct {
	MaterialID   string
	MaterialName string
	Unit         string
	Required     decimal.Decimal
	Satisfied    bool
	Shortfall    decimal.Decimal
	PlannedLots  []allocation.Allocation
}

// Estimate resultado agregado: OK solo si todos los ingredientes alcanzan.
type Estimate struct {
	RecipeID    string
	Batches     decimal.Decimal
	OK          bool
	Ingredients []IngredientEstimate
}

// RegisterInput metadatos de la confirmación de producción.
type RegisterInput struct {
	RecipeID    string
	Batches     decimal.Decimal
	AsOf        time.Time
	StartTime   string
	EndTime     string
	Observation string
	LotCode     string // override opcional del código del lote producido
}

// RegisterResult producción confirmada y lotes de producto terminado creados.
type RegisterResult struct {
	Run         *entity.ProductionRun
	CreatedLots []*entity.Lot
}

// Service planificador de producción.
type Service struct {
	txRunner ports.TxRunner
	lots     repository.LotRepository
	recipes  repository.RecipeRepository
}

// NewService construye el planificador. Las lecturas usan los repos sobre el
// pool; Register pasa por el TxRunner.
func NewService(txRunner ports.TxRunner, lots repository.LotRepository, recipes repository.RecipeRepository) *Service {
	return &Service{txRunner: txRunner, lots: lots, recipes: recipes}
}

// Calculate expande la receta por tandas y planifica el consumo FIFO de cada
// ingrediente sin mutar nada ni tomar locks. La insuficiencia se reporta como
// resultado estructurado (OK=false + faltantes), nunca como error.
func (s *Service) Calculate(ctx context.Context, recipeID string, batches decimal.Decimal, asOf time.Time) (*Estimate, error) {
	if recipeID == "" || batches.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	recipe, err := s.recipes.GetByID(recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.ErrNotFound
	}
	ingredients, err := s.recipes.ListIngredients(recipeID)
	if err != nil {
		return nil, err
	}
	return planIngredients(s.lots, recipeID, ingredients, batches, asOf, false)
}

// planIngredients planifica todos los ingredientes con el mismo algoritmo que
// ejecuta la confirmación. forUpdate bloquea los candidatos (solo dentro de
// una transacción).
func planIngredients(lots repository.LotRepository, recipeID string, ingredients []*entity.RecipeIngredient, batches decimal.Decimal, asOf time.Time, forUpdate bool) (*Estimate, error) {
	est := &Estimate{RecipeID: recipeID, Batches: batches, OK: true}
	for _, ing := range ingredients {
		required := ing.PerBatch.Mul(batches)

		var candidates []*entity.Lot
		var err error
		if forUpdate {
			candidates, err = lots.ListCandidatesForUpdate(entity.OwnerTypeMaterial, ing.MaterialID, asOf)
		} else {
			candidates, err = lots.ListCandidates(entity.OwnerTypeMaterial, ing.MaterialID, asOf)
		}
		if err != nil {
			return nil, err
		}
		plan, err := allocation.PlanFIFO(required, candidates)
		if err != nil {
			return nil, err
		}
		est.Ingredients = append(est.Ingredients, IngredientEstimate{
			MaterialID:   ing.MaterialID,
			MaterialName: ing.MaterialName,
			Unit:         ing.Unit,
			Required:     required,
			Satisfied:    plan.Satisfied,
			Shortfall:    plan.Shortfall,
			PlannedLots:  plan.Allocations,
		})
		if !plan.Satisfied {
			est.OK = false
		}
	}
	return est, nil
}

// Register confirma una producción. Replanifica dentro de la transacción
// sobre candidatos bloqueados (la vista previa es solo indicativa): si algún
// ingrediente no alcanza falla con InsufficientStockError nombrando el primer
// faltante, sin ningún efecto. En éxito descuenta cada lote planificado
// (SALIDA, referencia = la producción), crea los lotes de producto terminado
// y descuenta empaque cuando la etapa destino lo consume, todo o nada.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.RecipeID == "" || in.Batches.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	var result *RegisterResult
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		// Receta, ingredientes y rendimientos se leen dentro de la
		// transacción: toda la confirmación opera sobre un solo snapshot.
		recipe, err := r.Recipes.GetByID(in.RecipeID)
		if err != nil {
			return err
		}
		if recipe == nil {
			return domain.ErrNotFound
		}
		recipeProducts, err := r.Recipes.ListProducts(in.RecipeID)
		if err != nil {
			return err
		}
		// Los rendimientos en unidades deben ser enteros: tandas
		// fraccionarias que no cierren en unidades completas se rechazan
		// antes de tocar nada.
		for _, rp := range recipeProducts {
			units := decimal.NewFromInt(rp.UnitsPerBatch).Mul(in.Batches)
			if !units.IsInteger() || units.LessThanOrEqual(decimal.Zero) {
				return fmt.Errorf("rendimiento fraccionario de %s (%s unidades): %w", rp.ProductName, units.String(), domain.ErrInvalidInput)
			}
		}
		ingredients, err := r.Recipes.ListIngredients(in.RecipeID)
		if err != nil {
			return err
		}
		// Replanificación con locks: protege contra consumo concurrente
		// posterior a la última vista previa.
		est, err := planIngredients(r.Lots, in.RecipeID, ingredients, in.Batches, in.AsOf, true)
		if err != nil {
			return err
		}
		for _, ing := range est.Ingredients {
			if !ing.Satisfied {
				return domain.NewInsufficientStock(entity.OwnerTypeMaterial, ing.MaterialID, ing.MaterialName,
					ing.Required, ing.Required.Sub(ing.Shortfall))
			}
		}

		run := &entity.ProductionRun{
			RecipeID:    in.RecipeID,
			Batches:     in.Batches,
			Date:        in.AsOf,
			StartTime:   in.StartTime,
			EndTime:     in.EndTime,
			Observation: in.Observation,
			CreatedAt:   in.AsOf,
		}
		if err := r.Runs.Create(run); err != nil {
			return err
		}
		ref := entity.MovementRef{Kind: entity.RefKindProduction, ID: run.ID}
		store := stock.NewLotStore(r.Lots, r.Movements)

		for _, ing := range est.Ingredients {
			reason := fmt.Sprintf("consumo de %s para producción de %s", ing.MaterialName, recipe.Name)
			for _, alloc := range ing.PlannedLots {
				if _, _, err := store.AdjustQuantity(alloc.LotID, alloc.Quantity.Neg(), entity.MovementKindSalida, reason, ref, in.AsOf); err != nil {
					return err
				}
			}
		}

		created := make([]*entity.Lot, 0, len(recipeProducts))
		for i, rp := range recipeProducts {
			product, err := r.Products.GetByID(rp.ProductID)
			if err != nil {
				return err
			}
			if product == nil {
				return domain.ErrNotFound
			}
			units := decimal.NewFromInt(rp.UnitsPerBatch).Mul(in.Batches)

			stage := product.DefaultStage
			if rp.RequiresFreezing {
				stage = entity.StageFrozen
			}
			lot, err := store.CreateLot(stock.CreateLotInput{
				OwnerType: entity.OwnerTypeProduct,
				OwnerID:   rp.ProductID,
				Code:      finishedLotCode(in.LotCode, run.ID, in.AsOf, i, len(recipeProducts)),
				Quantity:  units,
				IngressAt: in.AsOf,
				ExpiresAt: finishedLotExpiry(rp, stage, in.AsOf),
				Stage:     stage,
				Reason:    fmt.Sprintf("producción de %s", recipe.Name),
				Ref:       ref,
			})
			if err != nil {
				return err
			}
			created = append(created, lot)

			// La etapa no congelada consume empaque desde el registro mismo.
			if stage != entity.StageFrozen && product.ConsumesPackaging() {
				need := product.BagsPerUnit.Mul(units)
				if err := consumePackaging(store, r.Lots, product, need, ref, in.AsOf); err != nil {
					return err
				}
			}
		}

		result = &RegisterResult{Run: run, CreatedLots: created}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// consumePackaging planifica y descuenta material de empaque por FIFO dentro
// de la transacción en curso. Un faltante aborta toda la operación.
func consumePackaging(store *stock.LotStore, lots repository.LotRepository, product *entity.Product, need decimal.Decimal, ref entity.MovementRef, asOf time.Time) error {
	candidates, err := lots.ListCandidatesForUpdate(entity.OwnerTypeMaterial, product.PackagingMaterialID, asOf)
	if err != nil {
		return err
	}
	plan, err := allocation.PlanFIFO(need, candidates)
	if err != nil {
		return err
	}
	if !plan.Satisfied {
		return domain.NewInsufficientStock(entity.OwnerTypeMaterial, product.PackagingMaterialID,
			"empaque de "+product.Name, need, plan.Taken())
	}
	reason := fmt.Sprintf("empaque de %s", product.Name)
	for _, alloc := range plan.Allocations {
		if _, _, err := store.AdjustQuantity(alloc.LotID, alloc.Quantity.Neg(), entity.MovementKindSalida, reason, ref, asOf); err != nil {
			return err
		}
	}
	return nil
}

// finishedLotCode código del lote producido: override del operador o
// generado por fecha + producción. Con más de un producto se sufija el índice
// para mantener unicidad por dueño.
func finishedLotCode(override, runID string, asOf time.Time, index, total int) string {
	base := override
	if base == "" {
		base = fmt.Sprintf("PR-%s-%s", asOf.Format("20060102"), shortID(runID))
	}
	if total > 1 {
		return fmt.Sprintf("%s-%d", base, index+1)
	}
	return base
}

// finishedLotExpiry vencimiento del lote producido según el ancla. Un lote
// congelado con ancla en entrada a etapa aún no vence: su vencimiento se
// computa al salir de FROZEN.
func finishedLotExpiry(rp *entity.RecipeProduct, stage string, asOf time.Time) *time.Time {
	if rp.ShelfLifeDays <= 0 {
		return nil
	}
	if rp.ShelfLifeAnchor == entity.ShelfLifeAnchorStageEntry && stage == entity.StageFrozen {
		return nil
	}
	exp := asOf.AddDate(0, 0, rp.ShelfLifeDays)
	return &exp
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
