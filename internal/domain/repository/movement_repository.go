package repository

import (
	"time"

	"github.com/jhoicas/panaderia-api/internal/domain/entity"
)

// MovementFilter filtros del listado de movimientos (modelo de lectura).
type MovementFilter struct {
	LotID   string
	OwnerID string // filtra por dueño del lote
	Kind    string
	RefKind string
	RefID   string
	From    *time.Time
	To      *time.Time
	Limit   int
	Offset  int
}

// MovementRepository define el puerto del libro de inventario: solo altas y
// lecturas, nunca updates ni deletes.
type MovementRepository interface {
	Create(entry *entity.MovementEntry) error
	List(filter MovementFilter) ([]*entity.MovementEntry, error)
	ListByLot(lotID string) ([]*entity.MovementEntry, error)
}
