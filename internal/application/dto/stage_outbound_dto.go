package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransitionRequest body para POST /api/lots/:id/transition.
type TransitionRequest struct {
	Destination string          `json:"destination"` // PACKAGED o BAKED
	Quantity    decimal.Decimal `json:"quantity"`
	Date        string          `json:"date,omitempty"`
}

// TransitionResponse resultado de un cambio de etapa.
type TransitionResponse struct {
	TransitionID      string          `json:"transition_id"`
	SourceLot         LotResponse     `json:"source_lot"`
	DestinationLot    LotResponse     `json:"destination_lot"`
	PackagingConsumed decimal.Decimal `json:"packaging_consumed"`
}

// FrozenReleaseRequest body para POST /api/lots/:id/release (desde congelado).
type FrozenReleaseRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
	Date     string          `json:"date,omitempty"`
}

// ReleaseStockRequest body para POST /api/outbound. Con mode=FIFO se indica
// product_id; con mode=LOT, lot_id. Quantity en unidades base o Packages en
// paquetes (mutuamente excluyentes; packages se convierte en el borde).
type ReleaseStockRequest struct {
	Mode           string          `json:"mode"` // FIFO o LOT
	ProductID      string          `json:"product_id,omitempty"`
	LotID          string          `json:"lot_id,omitempty"`
	Quantity       decimal.Decimal `json:"quantity,omitempty"`
	Packages       decimal.Decimal `json:"packages,omitempty"`
	PreferredStage string          `json:"preferred_stage,omitempty"` // PACKAGED o BAKED
	Date           string          `json:"date,omitempty"`
}

// AvailabilityResponse stock vendible de un producto: total en unidades
// base, paquetes completos que alcanza a armar y los lotes en orden FIFO.
type AvailabilityResponse struct {
	ProductID    string          `json:"product_id"`
	Stage        string          `json:"stage,omitempty"`
	TotalUnits   decimal.Decimal `json:"total_units"`
	FullPackages decimal.Decimal `json:"full_packages"`
	LooseUnits   decimal.Decimal `json:"loose_units"`
	Lots         []LotResponse   `json:"lots"`
}

// ReleaseStockResponse salida confirmada con el detalle por lote.
type ReleaseStockResponse struct {
	ReleaseID string               `json:"release_id"`
	ProductID string               `json:"product_id"`
	Mode      string               `json:"mode"`
	Quantity  decimal.Decimal      `json:"quantity"`
	Date      time.Time            `json:"date"`
	Consumed  []PlannedLotResponse `json:"consumed"`
}
