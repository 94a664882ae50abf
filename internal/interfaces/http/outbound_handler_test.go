package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-api/internal/application/apptest"
	"github.com/jhoicas/panaderia-api/internal/application/outbound"
	"github.com/jhoicas/panaderia-api/internal/application/production"
	"github.com/jhoicas/panaderia-api/internal/application/stage"
	"github.com/jhoicas/panaderia-api/internal/application/stock"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	apphttp "github.com/jhoicas/panaderia-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var asOf = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

// buildTestApp levanta la API completa sobre el store en memoria.
func buildTestApp(t *testing.T) (*fiber.App, *apptest.Store) {
	t.Helper()
	store := apptest.NewStore()
	repos := store.Repos()

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Stock:      stock.NewService(store, repos.Lots, repos.Movements),
		Production: production.NewService(store, repos.Lots, repos.Recipes),
		Stages:     stage.NewService(store),
		Outbound:   outbound.NewService(store),
		Products:   repos.Products,
		Lots:       repos.Lots,
	})
	return app, store
}

// seedPan registra el producto "pan" (paquetes de 5) con lotes vendibles:
// 7 unidades empacadas (más viejas) y 5 horneadas.
func seedPan(t *testing.T, store *apptest.Store) {
	t.Helper()
	store.SeedProduct(&entity.Product{
		ID: "pan", Name: "Pan campesino",
		DefaultStage: entity.StagePackaged, UnitsPerPackage: 5,
	})
	store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "P-001",
		Quantity: decimal.NewFromInt(7), IngressAt: asOf.AddDate(0, 0, -3),
		Stage: entity.StagePackaged,
	})
	store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeProduct, OwnerID: "pan", Code: "P-002",
		Quantity: decimal.NewFromInt(5), IngressAt: asOf.AddDate(0, 0, -1),
		Stage: entity.StageBaked,
	})
}

func doGet(t *testing.T, app *fiber.App, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/outbound/availability
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: disponibilidad sin filtro de etapa suma ambas etapas vendibles y
// reporta paquetes completos y unidades sueltas.
func TestAvailability_TotalYPaquetes(t *testing.T) {
	app, store := buildTestApp(t)
	seedPan(t, store)

	resp := doGet(t, app, "/api/outbound/availability?product_id=pan&date=2025-03-15")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		ProductID    string          `json:"product_id"`
		TotalUnits   decimal.Decimal `json:"total_units"`
		FullPackages decimal.Decimal `json:"full_packages"`
		LooseUnits   decimal.Decimal `json:"loose_units"`
		Lots         []struct {
			Code  string `json:"code"`
			Stage string `json:"stage"`
		} `json:"lots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, "pan", body.ProductID)
	assert.True(t, body.TotalUnits.Equal(decimal.NewFromInt(12)), "7 empacadas + 5 horneadas")
	assert.True(t, body.FullPackages.Equal(decimal.NewFromInt(2)), "12 unidades en paquetes de 5 → 2 completos")
	assert.True(t, body.LooseUnits.Equal(decimal.NewFromInt(2)), "2 unidades no cierran paquete")

	// Orden FIFO: el lote más viejo primero.
	require.Len(t, body.Lots, 2)
	assert.Equal(t, "P-001", body.Lots[0].Code)
	assert.Equal(t, "P-002", body.Lots[1].Code)
}

// Caso 2: el filtro de etapa restringe los lotes y el total.
func TestAvailability_FiltroPorEtapa(t *testing.T) {
	app, store := buildTestApp(t)
	seedPan(t, store)

	resp := doGet(t, app, "/api/outbound/availability?product_id=pan&stage=BAKED&date=2025-03-15")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		TotalUnits   decimal.Decimal `json:"total_units"`
		FullPackages decimal.Decimal `json:"full_packages"`
		Lots         []struct {
			Code string `json:"code"`
		} `json:"lots"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.True(t, body.TotalUnits.Equal(decimal.NewFromInt(5)))
	assert.True(t, body.FullPackages.Equal(decimal.NewFromInt(1)))
	require.Len(t, body.Lots, 1)
	assert.Equal(t, "P-002", body.Lots[0].Code)
}

// Caso 3: producto inexistente → 404; etapa no vendible → 400.
func TestAvailability_Errores(t *testing.T) {
	app, store := buildTestApp(t)
	seedPan(t, store)

	resp := doGet(t, app, "/api/outbound/availability?product_id=no-existe")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doGet(t, app, "/api/outbound/availability?product_id=pan&stage=FROZEN")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "VALIDATION")

	resp = doGet(t, app, "/api/outbound/availability")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// GET /api/lots/:id/movements
// ──────────────────────────────────────────────────────────────────────────────

// El libro del lote expone sus asientos y el saldo reconstruido.
func TestLotLedger_Endpoint(t *testing.T) {
	app, store := buildTestApp(t)
	seedPan(t, store)
	lot := store.SeedLot(&entity.Lot{
		OwnerType: entity.OwnerTypeMaterial, OwnerID: "harina", Code: "H-001",
		Quantity: decimal.NewFromInt(500), IngressAt: asOf,
	})

	resp := doGet(t, app, "/api/lots/"+lot.ID+"/movements")
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Lot struct {
			ID       string          `json:"id"`
			Quantity decimal.Decimal `json:"quantity"`
		} `json:"lot"`
		LedgerBalance decimal.Decimal `json:"ledger_balance"`
		Movements     []struct {
			Kind string `json:"kind"`
		} `json:"movements"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, lot.ID, body.Lot.ID)
	assert.True(t, body.LedgerBalance.Equal(body.Lot.Quantity), "saldo del libro == cantidad del lote")
	require.Len(t, body.Movements, 1)
	assert.Equal(t, entity.MovementKindEntrada, body.Movements[0].Kind)
}

func TestLotLedger_NoExiste(t *testing.T) {
	app, _ := buildTestApp(t)

	resp := doGet(t, app, "/api/lots/no-existe/movements")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
