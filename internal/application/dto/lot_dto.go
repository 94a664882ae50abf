package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// CreateLotRequest body para POST /api/lots (ingreso de lote).
type CreateLotRequest struct {
	OwnerType  string          `json:"owner_type"` // MATERIAL o PRODUCT
	OwnerID    string          `json:"owner_id"`
	Code       string          `json:"code"`
	Quantity   decimal.Decimal `json:"quantity"`
	Date       string          `json:"date,omitempty"`       // YYYY-MM-DD, default hoy
	Expiration string          `json:"expiration,omitempty"` // YYYY-MM-DD
	Stage      string          `json:"stage,omitempty"`      // solo PRODUCT
	Reason     string          `json:"reason,omitempty"`
}

// AdjustLotRequest body para POST /api/lots/:id/adjust.
type AdjustLotRequest struct {
	Quantity decimal.Decimal `json:"quantity"` // firmada: positiva suma, negativa resta
	Reason   string          `json:"reason"`
	Date     string          `json:"date,omitempty"`
}

// SetLotActiveRequest body para PATCH /api/lots/:id/active.
type SetLotActiveRequest struct {
	Active bool `json:"active"`
}

// LotResponse representación HTTP de un lote.
type LotResponse struct {
	ID         string          `json:"id"`
	OwnerType  string          `json:"owner_type"`
	OwnerID    string          `json:"owner_id"`
	Code       string          `json:"code"`
	Quantity   decimal.Decimal `json:"quantity"`
	IngressAt  time.Time       `json:"ingress_at"`
	ExpiresAt  *time.Time      `json:"expires_at,omitempty"`
	State      string          `json:"state"`
	Stage      string          `json:"stage,omitempty"`
}

// NewLotResponse mapea la entidad, derivando EXPIRED si corresponde.
func NewLotResponse(lot *entity.Lot, asOf time.Time) LotResponse {
	return LotResponse{
		ID:        lot.ID,
		OwnerType: lot.OwnerType,
		OwnerID:   lot.OwnerID,
		Code:      lot.Code,
		Quantity:  lot.Quantity,
		IngressAt: lot.IngressAt,
		ExpiresAt: lot.ExpiresAt,
		State:     lot.EffectiveState(asOf),
		Stage:     lot.Stage,
	}
}

// LotLedgerResponse lote con su libro completo y el saldo reconstruido a
// partir de los asientos firmados.
type LotLedgerResponse struct {
	Lot           LotResponse        `json:"lot"`
	LedgerBalance decimal.Decimal    `json:"ledger_balance"`
	Movements     []MovementResponse `json:"movements"`
}

// MovementResponse representación HTTP de un asiento del libro.
type MovementResponse struct {
	ID       string          `json:"id"`
	LotID    string          `json:"lot_id"`
	Quantity decimal.Decimal `json:"quantity"`
	Kind     string          `json:"kind"`
	Reason   string          `json:"reason,omitempty"`
	RefKind  string          `json:"ref_kind,omitempty"`
	RefID    string          `json:"ref_id,omitempty"`
	Date     time.Time       `json:"date"`
}

// NewMovementResponse mapea la entidad.
func NewMovementResponse(m *entity.MovementEntry) MovementResponse {
	return MovementResponse{
		ID:       m.ID,
		LotID:    m.LotID,
		Quantity: m.Quantity,
		Kind:     m.Kind,
		Reason:   m.Reason,
		RefKind:  m.RefKind,
		RefID:    m.RefID,
		Date:     m.Date,
	}
}
