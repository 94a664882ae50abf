package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductionRun registro de una producción confirmada. Es dueño de los
// movimientos que causó (vía referencia) y de los lotes de producto
// terminado que creó.
type ProductionRun struct {
	ID          string
	RecipeID    string
	Batches     decimal.Decimal
	Date        time.Time
	StartTime   string // HH:MM, opcional
	EndTime     string
	Observation string
	CreatedAt   time.Time
}

// StageTransition registro de un cambio de etapa de producto terminado.
type StageTransition struct {
	ID               string
	SourceLotID      string
	DestinationLotID string
	Stage            string // etapa destino
	Quantity         decimal.Decimal
	Date             time.Time
	CreatedAt        time.Time
}

// OutboundRelease registro de una salida de producto terminado (venta,
// liberación o merma directa).
type OutboundRelease struct {
	ID        string
	ProductID string
	Mode      string // FIFO o LOT
	Quantity  decimal.Decimal
	Date      time.Time
	CreatedAt time.Time
}

// Modos de salida de producto terminado.
const (
	ReleaseModeFIFO = "FIFO"
	ReleaseModeLot  = "LOT"
)
