package outbound_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-api/internal/application/apptest"
	"github.com/jhoicas/panaderia-api/internal/application/outbound"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

var asOf = time.Date(2025, 3, 15, 16, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// newScenario deja stock vendible de "pan" en dos etapas: 30 unidades
// empacadas viejas, 40 horneadas recientes, más 25 congeladas que nunca
// deben despacharse.
func newScenario(t *testing.T) (*apptest.Store, *outbound.Service, map[string]*entity.Lot) {
	t.Helper()
	store := apptest.NewStore()
	store.SeedProduct(&entity.Product{ID: "pan", Name: "Pan campesino", DefaultStage: entity.StagePackaged, UnitsPerPackage: 5})

	lots := map[string]*entity.Lot{
		"packaged": store.SeedLot(&entity.Lot{
			OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "P-EMP",
			Quantity: dec(30), IngressAt: asOf.AddDate(0, 0, -4), Stage: entity.StagePackaged,
		}),
		"baked": store.SeedLot(&entity.Lot{
			OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "P-HOR",
			Quantity: dec(40), IngressAt: asOf.AddDate(0, 0, -1), Stage: entity.StageBaked,
		}),
		"frozen": store.SeedLot(&entity.Lot{
			OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "P-CON",
			Quantity: dec(25), IngressAt: asOf.AddDate(0, 0, -10), Stage: entity.StageFrozen,
		}),
	}
	return store, outbound.NewService(store), lots
}

// TestReleaseFIFO_CruzaEtapas: sin etapa preferida el FIFO corre por fecha de
// ingreso sobre ambas etapas vendibles; el congelado queda fuera aunque sea
// el más viejo.
func TestReleaseFIFO_CruzaEtapas(t *testing.T) {
	store, svc, lots := newScenario(t)

	result, err := svc.ReleaseFIFO(context.Background(), "pan", dec(50), "", asOf)
	require.NoError(t, err)

	require.Len(t, result.Consumed, 2)
	assert.Equal(t, "P-EMP", result.Consumed[0].LotCode, "el empacado es más viejo")
	assert.True(t, result.Consumed[0].Quantity.Equal(dec(30)))
	assert.Equal(t, "P-HOR", result.Consumed[1].LotCode)
	assert.True(t, result.Consumed[1].Quantity.Equal(dec(20)))

	assert.True(t, store.Lot(lots["frozen"].ID).Quantity.Equal(dec(25)), "el congelado no se toca")
	assert.Equal(t, entity.ReleaseModeFIFO, result.Release.Mode)
}

// TestReleaseFIFO_EtapaPreferidaConStock: si la etapa preferida alcanza, el
// consumo se restringe a ella aunque otra tenga lotes más viejos.
func TestReleaseFIFO_EtapaPreferidaConStock(t *testing.T) {
	store, svc, lots := newScenario(t)

	result, err := svc.ReleaseFIFO(context.Background(), "pan", dec(35), entity.StageBaked, asOf)
	require.NoError(t, err)

	require.Len(t, result.Consumed, 1)
	assert.Equal(t, "P-HOR", result.Consumed[0].LotCode)
	assert.True(t, store.Lot(lots["packaged"].ID).Quantity.Equal(dec(30)), "la etapa no preferida queda intacta")
}

// TestReleaseFIFO_EtapaPreferidaSinStock: si la preferida no alcanza se cae
// al FIFO sobre ambas etapas.
func TestReleaseFIFO_EtapaPreferidaSinStock(t *testing.T) {
	_, svc, _ := newScenario(t)

	result, err := svc.ReleaseFIFO(context.Background(), "pan", dec(50), entity.StagePackaged, asOf)
	require.NoError(t, err)

	require.Len(t, result.Consumed, 2)
	assert.True(t, result.Consumed[0].Quantity.Add(result.Consumed[1].Quantity).Equal(dec(50)))
}

// TestReleaseFIFO_FaltanteAborta: pedir más que todo lo vendible es error y
// no descuenta nada.
func TestReleaseFIFO_FaltanteAborta(t *testing.T) {
	store, svc, lots := newScenario(t)
	before := len(store.Movements())

	_, err := svc.ReleaseFIFO(context.Background(), "pan", dec(71), "", asOf)

	var insufficient *domain.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Pan campesino", insufficient.OwnerName)
	assert.True(t, insufficient.Shortfall.Equal(dec(1)))

	assert.True(t, store.Lot(lots["packaged"].ID).Quantity.Equal(dec(30)))
	assert.True(t, store.Lot(lots["baked"].ID).Quantity.Equal(dec(40)))
	assert.Len(t, store.Movements(), before)
}

func TestReleaseFIFO_Validaciones(t *testing.T) {
	_, svc, _ := newScenario(t)
	ctx := context.Background()

	_, err := svc.ReleaseFIFO(ctx, "", dec(5), "", asOf)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.ReleaseFIFO(ctx, "pan", decimal.NewFromFloat(2.5), "", asOf)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "las unidades deben ser enteras")

	_, err = svc.ReleaseFIFO(ctx, "pan", dec(5), entity.StageFrozen, asOf)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "FROZEN no es etapa vendible")
}

// TestReleaseFromLot: el despacho contra un lote puntual descuenta solo ese
// lote y registra la salida en modo LOT.
func TestReleaseFromLot(t *testing.T) {
	store, svc, lots := newScenario(t)

	result, err := svc.ReleaseFromLot(context.Background(), lots["baked"].ID, dec(15), asOf)
	require.NoError(t, err)

	assert.Equal(t, entity.ReleaseModeLot, result.Release.Mode)
	require.Len(t, result.Consumed, 1)
	assert.Equal(t, "P-HOR", result.Consumed[0].LotCode)
	assert.True(t, store.Lot(lots["baked"].ID).Quantity.Equal(dec(25)))
	assert.True(t, store.Lot(lots["packaged"].ID).Quantity.Equal(dec(30)))
}

func TestReleaseFromLot_Errores(t *testing.T) {
	_, svc, lots := newScenario(t)
	ctx := context.Background()

	// Congelado no se despacha directo a venta.
	_, err := svc.ReleaseFromLot(ctx, lots["frozen"].ID, dec(5), asOf)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Más de lo que el lote tiene.
	_, err = svc.ReleaseFromLot(ctx, lots["packaged"].ID, dec(31), asOf)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = svc.ReleaseFromLot(ctx, "no-existe", dec(5), asOf)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
