package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación de LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

const lotColumns = `id, owner_type, owner_id, code, quantity, ingress_at, expires_at, state, stage, created_at, updated_at`

func scanLot(row pgx.Row) (*entity.Lot, error) {
	var l entity.Lot
	var stage *string
	err := row.Scan(&l.ID, &l.OwnerType, &l.OwnerID, &l.Code, &l.Quantity,
		&l.IngressAt, &l.ExpiresAt, &l.State, &stage, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if stage != nil {
		l.Stage = *stage
	}
	return &l, nil
}

func (r *LotRepo) queryLots(query string, args ...any) ([]*entity.Lot, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		lot, err := scanLot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, lot)
	}
	return list, rows.Err()
}

// GetByID obtiene un lote por id; nil si no existe.
func (r *LotRepo) GetByID(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return lot, nil
}

// GetByIDForUpdate obtiene el lote y bloquea la fila (SELECT FOR UPDATE).
func (r *LotRepo) GetByIDForUpdate(id string) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots WHERE id = $1 FOR UPDATE`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return lot, nil
}

const candidateWhere = `
	WHERE owner_type = $1 AND owner_id = $2
	  AND state = 'AVAILABLE' AND quantity > 0
	  AND (expires_at IS NULL OR expires_at >= $3)
	ORDER BY ingress_at ASC, code ASC`

// ListCandidates lotes asignables de un dueño en orden FIFO (ingreso asc,
// código asc). Excluye inactivos, agotados y vencidos a asOf.
func (r *LotRepo) ListCandidates(ownerType, ownerID string, asOf time.Time) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots` + candidateWhere
	return r.queryLots(query, ownerType, ownerID, asOf)
}

// ListCandidatesForUpdate igual que ListCandidates, bloqueando las filas.
// El orden del FOR UPDATE sigue el orden FIFO, así dos confirmaciones
// concurrentes sobre el mismo dueño se serializan sin interbloqueo.
func (r *LotRepo) ListCandidatesForUpdate(ownerType, ownerID string, asOf time.Time) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots` + candidateWhere + ` FOR UPDATE`
	return r.queryLots(query, ownerType, ownerID, asOf)
}

func sellableQuery(stage string, forUpdate bool) string {
	query := `SELECT ` + lotColumns + ` FROM lots
	WHERE owner_type = 'PRODUCT' AND owner_id = $1
	  AND state = 'AVAILABLE' AND quantity > 0
	  AND (expires_at IS NULL OR expires_at >= $2)`
	if stage != "" {
		query += ` AND stage = $3`
	} else {
		query += ` AND stage IN ('PACKAGED', 'BAKED')`
	}
	query += ` ORDER BY ingress_at ASC, code ASC`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	return query
}

// ListSellable lotes de producto terminado despachables, opcionalmente
// restringidos a una etapa.
func (r *LotRepo) ListSellable(productID, stage string, asOf time.Time) ([]*entity.Lot, error) {
	if stage != "" {
		return r.queryLots(sellableQuery(stage, false), productID, asOf, stage)
	}
	return r.queryLots(sellableQuery(stage, false), productID, asOf)
}

// ListSellableForUpdate igual que ListSellable, bloqueando las filas.
func (r *LotRepo) ListSellableForUpdate(productID, stage string, asOf time.Time) ([]*entity.Lot, error) {
	if stage != "" {
		return r.queryLots(sellableQuery(stage, true), productID, asOf, stage)
	}
	return r.queryLots(sellableQuery(stage, true), productID, asOf)
}

// ListByOwner lista todos los lotes de un dueño, incluidos agotados e
// inactivos (trazabilidad), en orden FIFO.
func (r *LotRepo) ListByOwner(ownerType, ownerID string, limit, offset int) ([]*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY ingress_at ASC, code ASC
		LIMIT $3 OFFSET $4`
	return r.queryLots(query, ownerType, ownerID, limit, offset)
}

// Create inserta el lote. Colisión de (dueño, código) es DuplicateCodeError.
func (r *LotRepo) Create(lot *entity.Lot) error {
	if lot.ID == "" {
		lot.ID = uuid.New().String()
	}
	var stage *string
	if lot.Stage != "" {
		stage = &lot.Stage
	}
	query := `
		INSERT INTO lots (id, owner_type, owner_id, code, quantity, ingress_at, expires_at, state, stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.OwnerType, lot.OwnerID, lot.Code, lot.Quantity,
		lot.IngressAt, lot.ExpiresAt, lot.State, stage, lot.CreatedAt, lot.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.DuplicateCodeError{OwnerID: lot.OwnerID, Code: lot.Code}
		}
		return fmt.Errorf("create lot: %w", err)
	}
	return nil
}

// Update persiste cantidad, estado, etapa y vencimiento del lote.
func (r *LotRepo) Update(lot *entity.Lot) error {
	var stage *string
	if lot.Stage != "" {
		stage = &lot.Stage
	}
	query := `
		UPDATE lots SET quantity = $2, state = $3, stage = $4, expires_at = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		lot.ID, lot.Quantity, lot.State, stage, lot.ExpiresAt, lot.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByStageAndDay lote destino de un producto en una etapa con ingreso en
// el día de asOf; nil si no hay.
func (r *LotRepo) FindByStageAndDay(productID, stage string, asOf time.Time) (*entity.Lot, error) {
	query := `SELECT ` + lotColumns + ` FROM lots
		WHERE owner_type = 'PRODUCT' AND owner_id = $1 AND stage = $2
		  AND state <> 'INACTIVE'
		  AND ingress_at::date = ($3::timestamptz)::date
		ORDER BY code ASC
		LIMIT 1`
	lot, err := scanLot(r.q.QueryRow(context.Background(), query, productID, stage, asOf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find destination lot: %w", err)
	}
	return lot, nil
}
