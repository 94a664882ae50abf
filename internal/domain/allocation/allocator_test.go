package allocation_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/allocation"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var (
	day1 = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	day2 = time.Date(2025, 3, 12, 8, 0, 0, 0, time.UTC)
)

func lot(id, code string, qty int64, ingress time.Time) *entity.Lot {
	return &entity.Lot{
		ID:        id,
		OwnerType: entity.OwnerTypeMaterial,
		OwnerID:   "harina",
		Code:      code,
		Quantity:  decimal.NewFromInt(qty),
		IngressAt: ingress,
		State:     entity.LotStateAvailable,
	}
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// ──────────────────────────────────────────────────────────────────────────────
// PlanFIFO
// ──────────────────────────────────────────────────────────────────────────────

// TestPlanFIFO_ReparteEntreLotes: con 300 g en el lote viejo y 400 g en el
// nuevo, pedir 500 g agota el viejo y toma 200 g del nuevo.
func TestPlanFIFO_ReparteEntreLotes(t *testing.T) {
	candidates := []*entity.Lot{
		lot("l2", "H-002", 400, day2),
		lot("l1", "H-001", 300, day1),
	}

	plan, err := allocation.PlanFIFO(dec(500), candidates)
	require.NoError(t, err)

	assert.True(t, plan.Satisfied)
	assert.True(t, plan.Shortfall.IsZero())
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "l1", plan.Allocations[0].LotID, "el lote más viejo se consume primero")
	assert.True(t, plan.Allocations[0].Quantity.Equal(dec(300)))
	assert.Equal(t, "l2", plan.Allocations[1].LotID)
	assert.True(t, plan.Allocations[1].Quantity.Equal(dec(200)))
}

// TestPlanFIFO_Faltante: la insuficiencia es resultado estructurado, no error.
func TestPlanFIFO_Faltante(t *testing.T) {
	candidates := []*entity.Lot{
		lot("l1", "H-001", 300, day1),
		lot("l2", "H-002", 400, day2),
	}

	plan, err := allocation.PlanFIFO(dec(800), candidates)
	require.NoError(t, err)

	assert.False(t, plan.Satisfied)
	assert.True(t, plan.Shortfall.Equal(dec(100)), "faltan 100, falta = %s", plan.Shortfall)
	assert.True(t, plan.Taken().Equal(dec(700)), "se planifica todo lo disponible")
}

// TestPlanFIFO_DesempatePorCodigo: a igual fecha de ingreso gana el código menor.
func TestPlanFIFO_DesempatePorCodigo(t *testing.T) {
	candidates := []*entity.Lot{
		lot("lb", "H-B", 100, day1),
		lot("la", "H-A", 100, day1),
	}

	plan, err := allocation.PlanFIFO(dec(150), candidates)
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "H-A", plan.Allocations[0].LotCode)
	assert.Equal(t, "H-B", plan.Allocations[1].LotCode)
}

// TestPlanFIFO_Determinista: el mismo input produce siempre el mismo plan,
// sin importar el orden de llegada de los candidatos.
func TestPlanFIFO_Determinista(t *testing.T) {
	a := []*entity.Lot{lot("l1", "H-001", 300, day1), lot("l2", "H-002", 400, day2)}
	b := []*entity.Lot{lot("l2", "H-002", 400, day2), lot("l1", "H-001", 300, day1)}

	p1, err := allocation.PlanFIFO(dec(500), a)
	require.NoError(t, err)
	p2, err := allocation.PlanFIFO(dec(500), b)
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
}

func TestPlanFIFO_RequeridoInvalido(t *testing.T) {
	_, err := allocation.PlanFIFO(decimal.Zero, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = allocation.PlanFIFO(dec(-5), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// TestPlanFIFO_NoMutaCandidatos: planificar no cambia las cantidades de los
// lotes ni el orden del slice recibido.
func TestPlanFIFO_NoMutaCandidatos(t *testing.T) {
	candidates := []*entity.Lot{
		lot("l2", "H-002", 400, day2),
		lot("l1", "H-001", 300, day1),
	}

	_, err := allocation.PlanFIFO(dec(500), candidates)
	require.NoError(t, err)

	assert.Equal(t, "l2", candidates[0].ID, "el slice original conserva su orden")
	assert.True(t, candidates[0].Quantity.Equal(dec(400)))
	assert.True(t, candidates[1].Quantity.Equal(dec(300)))
}

func TestPlanFIFO_IgnoraLotesSinCantidad(t *testing.T) {
	candidates := []*entity.Lot{
		lot("l0", "H-000", 0, day1),
		lot("l1", "H-001", 300, day2),
	}

	plan, err := allocation.PlanFIFO(dec(100), candidates)
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, "l1", plan.Allocations[0].LotID)
}

func TestSortFIFO(t *testing.T) {
	lots := []*entity.Lot{
		lot("l3", "H-003", 1, day2),
		lot("l2", "H-002", 1, day1),
		lot("l1", "H-001", 1, day1),
	}

	allocation.SortFIFO(lots)

	assert.Equal(t, "H-001", lots[0].Code)
	assert.Equal(t, "H-002", lots[1].Code)
	assert.Equal(t, "H-003", lots[2].Code)
}
