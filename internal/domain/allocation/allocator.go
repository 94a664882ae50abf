// Package allocation implementa el plan de consumo FIFO (servicio de dominio,
// sin estado ni efectos). El mismo plan respalda el cálculo de vista previa y
// la confirmación: la única fuente de divergencia es un cambio de stock entre
// ambos, que la confirmación detecta replanificando dentro de la transacción.
package allocation

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// Allocation consumo planificado sobre un lote puntual.
type Allocation struct {
	LotID     string
	LotCode   string
	Quantity  decimal.Decimal
	ExpiresAt *time.Time
}

// Plan resultado de la planificación: lotes en orden de consumo, si alcanza
// y cuánto falta cuando no alcanza. La insuficiencia es un resultado normal,
// no un error.
type Plan struct {
	Required    decimal.Decimal
	Allocations []Allocation
	Satisfied   bool
	Shortfall   decimal.Decimal
}

// Taken suma de cantidades planificadas.
func (p Plan) Taken() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Quantity)
	}
	return total
}

// SortFIFO ordena lotes por fecha de ingreso ascendente, desempatando por
// código ascendente. Es el orden canónico de asignación; los repositorios lo
// reproducen en SQL y aquí se reaplica para que el plan sea determinista
// independientemente del origen de los candidatos.
func SortFIFO(lots []*entity.Lot) {
	sort.SliceStable(lots, func(i, j int) bool {
		if lots[i].IngressAt.Equal(lots[j].IngressAt) {
			return lots[i].Code < lots[j].Code
		}
		return lots[i].IngressAt.Before(lots[j].IngressAt)
	})
}

// PlanFIFO recorre los candidatos en orden FIFO acumulando de cada lote hasta
// su cantidad disponible, hasta cubrir required o agotar candidatos. No muta
// los lotes recibidos. required <= 0 es ErrInvalidInput.
func PlanFIFO(required decimal.Decimal, candidates []*entity.Lot) (Plan, error) {
	if required.LessThanOrEqual(decimal.Zero) {
		return Plan{}, domain.ErrInvalidInput
	}

	ordered := make([]*entity.Lot, len(candidates))
	copy(ordered, candidates)
	SortFIFO(ordered)

	plan := Plan{Required: required, Shortfall: decimal.Zero}
	remaining := required
	for _, lot := range ordered {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		if lot.Quantity.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := decimal.Min(remaining, lot.Quantity)
		plan.Allocations = append(plan.Allocations, Allocation{
			LotID:     lot.ID,
			LotCode:   lot.Code,
			Quantity:  take,
			ExpiresAt: lot.ExpiresAt,
		})
		remaining = remaining.Sub(take)
	}

	plan.Satisfied = remaining.LessThanOrEqual(decimal.Zero)
	if !plan.Satisfied {
		plan.Shortfall = remaining
	}
	return plan, nil
}
