package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipo de dueño de un lote: materia prima o producto terminado.
const (
	OwnerTypeMaterial = "MATERIAL"
	OwnerTypeProduct  = "PRODUCT"
)

// Estados de ciclo de vida de un lote. EXPIRED no se persiste: se deriva de
// la fecha de vencimiento contra el instante consultado.
const (
	LotStateAvailable = "AVAILABLE"
	LotStateReserved  = "RESERVED"
	LotStateDepleted  = "DEPLETED"
	LotStateExpired   = "EXPIRED"
	LotStateInactive  = "INACTIVE"
)

// Etapas de producto terminado. FROZEN es etapa de espera; PACKAGED y BAKED
// son etapas vendibles.
const (
	StageFrozen   = "FROZEN"
	StagePackaged = "PACKAGED"
	StageBaked    = "BAKED"
)

// SellableStages etapas desde las que se puede despachar stock.
var SellableStages = []string{StagePackaged, StageBaked}

// Lot representa un lote fechado con cantidad de una materia prima o de un
// producto terminado. La cantidad nunca es negativa; al llegar a cero el lote
// pasa a DEPLETED pero no se borra (trazabilidad).
type Lot struct {
	ID        string
	OwnerType string
	OwnerID   string
	Code      string // único por dueño
	Quantity  decimal.Decimal
	IngressAt time.Time
	ExpiresAt *time.Time
	State     string
	Stage     string // solo producto terminado; vacío en materias primas
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsExpired indica si el lote está vencido al instante dado.
func (l *Lot) IsExpired(asOf time.Time) bool {
	return l.ExpiresAt != nil && l.ExpiresAt.Before(asOf)
}

// EffectiveState devuelve el estado observable: EXPIRED derivado si aplica,
// si no el estado persistido.
func (l *Lot) EffectiveState(asOf time.Time) string {
	if l.State == LotStateAvailable && l.IsExpired(asOf) {
		return LotStateExpired
	}
	return l.State
}

// IsCandidate indica si el lote entra en la cola FIFO de asignación:
// disponible, con cantidad y sin vencer.
func (l *Lot) IsCandidate(asOf time.Time) bool {
	return l.State == LotStateAvailable && l.Quantity.GreaterThan(decimal.Zero) && !l.IsExpired(asOf)
}

// IsSellable indica si el lote puede despacharse a venta: candidato y en
// etapa vendible.
func (l *Lot) IsSellable(asOf time.Time) bool {
	if !l.IsCandidate(asOf) {
		return false
	}
	return l.Stage == StagePackaged || l.Stage == StageBaked
}

// RecomputeState actualiza el estado materializado tras un cambio de
// cantidad: DEPLETED en cero, AVAILABLE en otro caso. INACTIVE se respeta
// (solo se sale de él manualmente).
func (l *Lot) RecomputeState() {
	if l.State == LotStateInactive {
		return
	}
	if l.Quantity.IsZero() {
		l.State = LotStateDepleted
		return
	}
	l.State = LotStateAvailable
}

// ValidStage valida una etapa de producto terminado.
func ValidStage(stage string) bool {
	switch stage {
	case StageFrozen, StagePackaged, StageBaked:
		return true
	}
	return false
}
