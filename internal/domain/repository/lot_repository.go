package repository

import (
	"time"

	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes. Las variantes
// ForUpdate bloquean las filas (SELECT FOR UPDATE) y solo tienen sentido
// dentro de una transacción.
type LotRepository interface {
	GetByID(id string) (*entity.Lot, error)
	GetByIDForUpdate(id string) (*entity.Lot, error)
	// ListCandidates devuelve los lotes asignables de un dueño (AVAILABLE,
	// con cantidad, sin vencer a asOf) en orden FIFO: ingreso asc, código asc.
	ListCandidates(ownerType, ownerID string, asOf time.Time) ([]*entity.Lot, error)
	ListCandidatesForUpdate(ownerType, ownerID string, asOf time.Time) ([]*entity.Lot, error)
	// ListSellable devuelve lotes de producto terminado en etapas vendibles
	// (PACKAGED/BAKED). stage restringe a una etapa si no es vacío.
	ListSellable(productID, stage string, asOf time.Time) ([]*entity.Lot, error)
	ListSellableForUpdate(productID, stage string, asOf time.Time) ([]*entity.Lot, error)
	// ListByOwner lista todos los lotes de un dueño (incluye DEPLETED/INACTIVE).
	ListByOwner(ownerType, ownerID string, limit, offset int) ([]*entity.Lot, error)
	// Create inserta el lote; colisión de (dueño, código) es DuplicateCodeError.
	Create(lot *entity.Lot) error
	// Update persiste cantidad, estado, etapa y updated_at.
	Update(lot *entity.Lot) error
	// FindByStageAndDay busca el lote destino de un producto en una etapa cuyo
	// ingreso cae en el día de asOf (para anexar traslados del mismo día).
	FindByStageAndDay(productID, stage string, asOf time.Time) (*entity.Lot, error)
}
