package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementKindEntrada  = "ENTRADA"
	MovementKindSalida   = "SALIDA"
	MovementKindAjuste   = "AJUSTE"
	MovementKindTraslado = "TRASLADO" // cambio de etapa entre lotes
)

// Tipos de referencia: qué evento causó el movimiento.
const (
	RefKindProduction = "PRODUCTION_RUN"
	RefKindTransition = "STAGE_TRANSITION"
	RefKindOutbound   = "OUTBOUND_RELEASE"
	RefKindManual     = "MANUAL"
)

// MovementRef referencia opcional al evento que causó un movimiento.
type MovementRef struct {
	Kind string
	ID   string
}

// MovementEntry asiento inmutable del libro de inventario. La cantidad es
// firmada: positiva aumenta el lote, negativa lo disminuye. La suma de
// asientos de un lote es igual a su cantidad actual (el campo quantity del
// lote es una cache materializada, siempre recomputable desde el libro).
type MovementEntry struct {
	ID        string
	LotID     string
	Quantity  decimal.Decimal
	Kind      string
	Reason    string
	RefKind   string // vacío si no hay referencia
	RefID     string
	Date      time.Time
	CreatedAt time.Time
}

// ValidMovementKind valida el tipo de movimiento.
func ValidMovementKind(kind string) bool {
	switch kind {
	case MovementKindEntrada, MovementKindSalida, MovementKindAjuste, MovementKindTraslado:
		return true
	}
	return false
}
