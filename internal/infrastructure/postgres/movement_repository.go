package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del libro de inventario sobre PostgreSQL.
// Solo inserta y lee: los asientos son inmutables.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create asienta un movimiento.
func (r *MovementRepo) Create(entry *entity.MovementEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	var refKind, refID *string
	if entry.RefKind != "" {
		refKind = &entry.RefKind
	}
	if entry.RefID != "" {
		refID = &entry.RefID
	}
	query := `
		INSERT INTO movements (id, lot_id, quantity, kind, reason, ref_kind, ref_id, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		entry.ID, entry.LotID, entry.Quantity, entry.Kind, entry.Reason,
		refKind, refID, entry.Date, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

// List lista movimientos con filtros opcionales, más recientes primero.
func (r *MovementRepo) List(filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	query := `
		SELECT m.id, m.lot_id, m.quantity, m.kind, m.reason, m.ref_kind, m.ref_id, m.date, m.created_at
		FROM movements m`
	var args []any
	pos := 1
	where := ""
	and := func(cond string, arg any) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, pos)
		args = append(args, arg)
		pos++
	}
	if filter.OwnerID != "" {
		query += ` JOIN lots l ON l.id = m.lot_id`
		and("l.owner_id = $%d", filter.OwnerID)
	}
	if filter.LotID != "" {
		and("m.lot_id = $%d", filter.LotID)
	}
	if filter.Kind != "" {
		and("m.kind = $%d", filter.Kind)
	}
	if filter.RefKind != "" {
		and("m.ref_kind = $%d", filter.RefKind)
	}
	if filter.RefID != "" {
		and("m.ref_id = $%d", filter.RefID)
	}
	if filter.From != nil {
		and("m.date >= $%d", *filter.From)
	}
	if filter.To != nil {
		and("m.date <= $%d", *filter.To)
	}
	query += where + fmt.Sprintf(" ORDER BY m.date DESC, m.created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	return r.queryMovements(query, args...)
}

// ListByLot lista todos los asientos de un lote en orden de creación
// (para recomputar su saldo).
func (r *MovementRepo) ListByLot(lotID string) ([]*entity.MovementEntry, error) {
	query := `
		SELECT id, lot_id, quantity, kind, reason, ref_kind, ref_id, date, created_at
		FROM movements WHERE lot_id = $1 ORDER BY created_at ASC`
	return r.queryMovements(query, lotID)
}

func (r *MovementRepo) queryMovements(query string, args ...any) ([]*entity.MovementEntry, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovementEntry
	for rows.Next() {
		var m entity.MovementEntry
		var refKind, refID *string
		if err := rows.Scan(&m.ID, &m.LotID, &m.Quantity, &m.Kind, &m.Reason,
			&refKind, &refID, &m.Date, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if refKind != nil {
			m.RefKind = *refKind
		}
		if refID != nil {
			m.RefID = *refID
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
