package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/application/production"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// CalculateProductionRequest body para POST /api/production/calculate.
type CalculateProductionRequest struct {
	RecipeID string          `json:"recipe_id"`
	Batches  decimal.Decimal `json:"batches"`
	Date     string          `json:"date,omitempty"` // YYYY-MM-DD, default hoy
}

// RegisterProductionRequest body para POST /api/production.
type RegisterProductionRequest struct {
	RecipeID    string          `json:"recipe_id"`
	Batches     decimal.Decimal `json:"batches"`
	Date        string          `json:"date,omitempty"`
	StartTime   string          `json:"start_time,omitempty"` // HH:MM
	EndTime     string          `json:"end_time,omitempty"`
	Observation string          `json:"observation,omitempty"`
	LotCode     string          `json:"lot_code,omitempty"` // override del código del lote producido
}

// PlannedLotResponse lote planificado dentro de una estimación.
type PlannedLotResponse struct {
	LotID     string          `json:"lot_id"`
	LotCode   string          `json:"lot_code"`
	Quantity  decimal.Decimal `json:"quantity"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
}

// IngredientEstimateResponse resultado por ingrediente.
type IngredientEstimateResponse struct {
	MaterialID   string               `json:"material_id"`
	MaterialName string               `json:"material_name"`
	Unit         string               `json:"unit"`
	Required     decimal.Decimal      `json:"required"`
	Satisfied    bool                 `json:"satisfied"`
	Shortfall    decimal.Decimal      `json:"shortfall"`
	PlannedLots  []PlannedLotResponse `json:"planned_lots"`
}

// ProductionEstimateResponse respuesta de calculate.
type ProductionEstimateResponse struct {
	RecipeID    string                       `json:"recipe_id"`
	Batches     decimal.Decimal              `json:"batches"`
	OK          bool                         `json:"ok"`
	Ingredients []IngredientEstimateResponse `json:"ingredients"`
}

// NewProductionEstimateResponse mapea la estimación del planificador.
func NewProductionEstimateResponse(est *production.Estimate) ProductionEstimateResponse {
	out := ProductionEstimateResponse{
		RecipeID: est.RecipeID,
		Batches:  est.Batches,
		OK:       est.OK,
	}
	for _, ing := range est.Ingredients {
		ir := IngredientEstimateResponse{
			MaterialID:   ing.MaterialID,
			MaterialName: ing.MaterialName,
			Unit:         ing.Unit,
			Required:     ing.Required,
			Satisfied:    ing.Satisfied,
			Shortfall:    ing.Shortfall,
		}
		for _, lot := range ing.PlannedLots {
			ir.PlannedLots = append(ir.PlannedLots, PlannedLotResponse{
				LotID:     lot.LotID,
				LotCode:   lot.LotCode,
				Quantity:  lot.Quantity,
				ExpiresAt: lot.ExpiresAt,
			})
		}
		out.Ingredients = append(out.Ingredients, ir)
	}
	return out
}

// ProductionRunResponse respuesta de register.
type ProductionRunResponse struct {
	ID          string          `json:"id"`
	RecipeID    string          `json:"recipe_id"`
	Batches     decimal.Decimal `json:"batches"`
	Date        time.Time       `json:"date"`
	Observation string          `json:"observation,omitempty"`
	CreatedLots []LotResponse   `json:"created_lots"`
}

// NewProductionRunResponse mapea el resultado de la confirmación.
func NewProductionRunResponse(run *entity.ProductionRun, lots []*entity.Lot, asOf time.Time) ProductionRunResponse {
	out := ProductionRunResponse{
		ID:          run.ID,
		RecipeID:    run.RecipeID,
		Batches:     run.Batches,
		Date:        run.Date,
		Observation: run.Observation,
	}
	for _, lot := range lots {
		out.CreatedLots = append(out.CreatedLots, NewLotResponse(lot, asOf))
	}
	return out
}
