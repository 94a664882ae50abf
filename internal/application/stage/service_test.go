package stage_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-api/internal/application/apptest"
	"github.com/jhoicas/panaderia-api/internal/application/stage"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

var asOf = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// newScenario deja listo un producto con empaque (2 bolsas por unidad, vida
// útil de 7 días desde la entrada a etapa) y un lote congelado de 50 unidades.
func newScenario(t *testing.T) (*apptest.Store, *stage.Service, *entity.Lot) {
	t.Helper()
	store := apptest.NewStore()

	store.SeedMaterial(&entity.Material{ID: "bolsas", Name: "Bolsas de empaque", Unit: "unidad"})
	store.SeedProduct(&entity.Product{
		ID:                  "pan",
		Name:                "Pan campesino",
		DefaultStage:        entity.StagePackaged,
		UnitsPerPackage:     5,
		PackagingMaterialID: "bolsas",
		BagsPerUnit:         dec(2),
		ShelfLifeDays:       7,
		ShelfLifeAnchor:     entity.ShelfLifeAnchorStageEntry,
	})
	frozen := store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeProduct,
		OwnerID:   "pan",
		Code:      "PR-20250310-aa11",
		Quantity:  dec(50),
		IngressAt: asOf.AddDate(0, 0, -5),
		Stage:     entity.StageFrozen,
	})
	return store, stage.NewService(store), frozen
}

func seedBags(t *testing.T, store *apptest.Store, qty int64) *entity.Lot {
	t.Helper()
	return store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeMaterial,
		OwnerID:   "bolsas",
		Code:      "B-001",
		Quantity:  dec(qty),
		IngressAt: asOf.AddDate(0, 0, -30),
	})
}

// TestMove_AEmpacado: mover 20 unidades a PACKAGED descuenta el origen,
// acredita el destino por TRASLADO y consume 40 bolsas por FIFO.
func TestMove_AEmpacado(t *testing.T) {
	store, svc, frozen := newScenario(t)
	bags := seedBags(t, store, 100)

	result, err := svc.Move(context.Background(), stage.MoveInput{
		LotID:       frozen.ID,
		Destination: entity.StagePackaged,
		Quantity:    dec(20),
		AsOf:        asOf,
	})
	require.NoError(t, err)

	assert.True(t, result.UpdatedLot.Quantity.Equal(dec(30)))
	assert.Equal(t, entity.StagePackaged, result.DestinationLot.Stage)
	assert.True(t, result.DestinationLot.Quantity.Equal(dec(20)))
	assert.Equal(t, "PR-20250310-aa11-EMP", result.DestinationLot.Code)
	assert.True(t, result.PackagingConsumed.Equal(dec(40)))
	assert.True(t, store.Lot(bags.ID).Quantity.Equal(dec(60)))

	// El vencimiento del destino corre desde la entrada a la etapa.
	require.NotNil(t, result.DestinationLot.ExpiresAt)
	assert.Equal(t, asOf.AddDate(0, 0, 7), *result.DestinationLot.ExpiresAt)

	// Ambos lados del traslado quedan asentados contra la misma transición.
	var traslados int
	for _, m := range store.Movements() {
		if m.RefKind == entity.RefKindTransition && m.RefID == result.Transition.ID && m.Kind == entity.MovementKindTraslado {
			traslados++
		}
	}
	assert.Equal(t, 2, traslados, "un asiento negativo en origen y uno positivo en destino")
}

// TestMove_AHorneado: BAKED no consume empaque.
func TestMove_AHorneado(t *testing.T) {
	store, svc, frozen := newScenario(t)
	bags := seedBags(t, store, 100)

	result, err := svc.Move(context.Background(), stage.MoveInput{
		LotID:       frozen.ID,
		Destination: entity.StageBaked,
		Quantity:    dec(10),
		AsOf:        asOf,
	})
	require.NoError(t, err)

	assert.Equal(t, entity.StageBaked, result.DestinationLot.Stage)
	assert.Equal(t, "PR-20250310-aa11-HOR", result.DestinationLot.Code)
	assert.True(t, result.PackagingConsumed.IsZero())
	assert.True(t, store.Lot(bags.ID).Quantity.Equal(dec(100)))
}

// TestMove_EmpaqueInsuficienteNoTocaNada: mover 50 unidades pide 100 bolsas;
// con 90 en stock la operación falla completa y el lote congelado queda igual.
func TestMove_EmpaqueInsuficienteNoTocaNada(t *testing.T) {
	store, svc, frozen := newScenario(t)
	bags := seedBags(t, store, 90)
	before := len(store.Movements())

	_, err := svc.Move(context.Background(), stage.MoveInput{
		LotID:       frozen.ID,
		Destination: entity.StagePackaged,
		Quantity:    dec(50),
		AsOf:        asOf,
	})

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "bolsas", insufficient.OwnerID)
	assert.True(t, insufficient.Required.Equal(dec(100)))
	assert.True(t, insufficient.Shortfall.Equal(dec(10)))

	assert.True(t, store.Lot(frozen.ID).Quantity.Equal(dec(50)), "el origen no cambia")
	assert.True(t, store.Lot(bags.ID).Quantity.Equal(dec(90)))
	assert.Len(t, store.Movements(), before, "ningún asiento ni lote destino queda escrito")
}

// TestMove_AcumulaEnLoteDelDia: dos movimientos del mismo producto, etapa y
// día acumulan sobre el mismo lote destino.
func TestMove_AcumulaEnLoteDelDia(t *testing.T) {
	store, svc, frozen := newScenario(t)
	seedBags(t, store, 200)
	ctx := context.Background()

	first, err := svc.Move(ctx, stage.MoveInput{
		LotID: frozen.ID, Destination: entity.StagePackaged, Quantity: dec(10), AsOf: asOf,
	})
	require.NoError(t, err)

	second, err := svc.Move(ctx, stage.MoveInput{
		LotID: frozen.ID, Destination: entity.StagePackaged, Quantity: dec(5), AsOf: asOf.Add(2 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, first.DestinationLot.ID, second.DestinationLot.ID)
	assert.True(t, second.DestinationLot.Quantity.Equal(dec(15)))
}

// TestMove_HeredaVencimientoConAnclaProduccion: con ancla en producción el
// destino hereda el vencimiento que el lote congelado ya traía.
func TestMove_HeredaVencimientoConAnclaProduccion(t *testing.T) {
	store := apptest.NewStore()
	store.SeedProduct(&entity.Product{
		ID: "pan", Name: "Pan campesino",
		DefaultStage:    entity.StagePackaged,
		ShelfLifeDays:   30,
		ShelfLifeAnchor: entity.ShelfLifeAnchorProduction,
	})
	inherited := asOf.AddDate(0, 0, 20)
	frozen := store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "PR-X",
		Quantity: dec(10), IngressAt: asOf.AddDate(0, 0, -10),
		ExpiresAt: &inherited, Stage: entity.StageFrozen,
	})
	svc := stage.NewService(store)

	result, err := svc.Move(context.Background(), stage.MoveInput{
		LotID: frozen.ID, Destination: entity.StageBaked, Quantity: dec(4), AsOf: asOf,
	})
	require.NoError(t, err)

	require.NotNil(t, result.DestinationLot.ExpiresAt)
	assert.Equal(t, inherited, *result.DestinationLot.ExpiresAt)
}

func TestMove_Validaciones(t *testing.T) {
	store, svc, frozen := newScenario(t)
	seedBags(t, store, 200)
	ctx := context.Background()

	// Cantidad fraccionaria.
	_, err := svc.Move(ctx, stage.MoveInput{
		LotID: frozen.ID, Destination: entity.StagePackaged, Quantity: decimal.NewFromFloat(2.5), AsOf: asOf,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// FROZEN no es destino.
	_, err = svc.Move(ctx, stage.MoveInput{
		LotID: frozen.ID, Destination: entity.StageFrozen, Quantity: dec(5), AsOf: asOf,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Más de lo que el lote tiene.
	_, err = svc.Move(ctx, stage.MoveInput{
		LotID: frozen.ID, Destination: entity.StagePackaged, Quantity: dec(51), AsOf: asOf,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Solo los lotes congelados cambian de etapa.
	packaged := store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "P-EMP",
		Quantity: dec(5), IngressAt: asOf, Stage: entity.StagePackaged,
	})
	_, err = svc.Move(ctx, stage.MoveInput{
		LotID: packaged.ID, Destination: entity.StageBaked, Quantity: dec(1), AsOf: asOf,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

// TestRelease_DesdeCongelado: la liberación directa descuenta el lote
// congelado con referencia a la salida registrada.
func TestRelease_DesdeCongelado(t *testing.T) {
	store, svc, frozen := newScenario(t)

	entry, err := svc.Release(context.Background(), frozen.ID, dec(8), asOf)
	require.NoError(t, err)

	assert.Equal(t, entity.MovementKindSalida, entry.Kind)
	assert.Equal(t, entity.RefKindOutbound, entry.RefKind)
	assert.True(t, entry.Quantity.Equal(dec(-8)))
	assert.True(t, store.Lot(frozen.ID).Quantity.Equal(dec(42)))
}

func TestRelease_SoloCongelado(t *testing.T) {
	store, svc, _ := newScenario(t)
	packaged := store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "P-EMP",
		Quantity: dec(5), IngressAt: asOf, Stage: entity.StagePackaged,
	})

	_, err := svc.Release(context.Background(), packaged.ID, dec(1), asOf)
	assert.ErrorIs(t, err, domain.ErrConflict)
}
