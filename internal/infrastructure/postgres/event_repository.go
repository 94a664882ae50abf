package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

var _ repository.ProductionRunRepository = (*ProductionRunRepo)(nil)

// ProductionRunRepo persistencia de producciones confirmadas.
type ProductionRunRepo struct {
	q Querier
}

// NewProductionRunRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductionRunRepository(q Querier) *ProductionRunRepo {
	return &ProductionRunRepo{q: q}
}

// Create persiste la producción.
func (r *ProductionRunRepo) Create(run *entity.ProductionRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	query := `
		INSERT INTO production_runs (id, recipe_id, batches, date, start_time, end_time, observation, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		run.ID, run.RecipeID, run.Batches, run.Date, run.StartTime, run.EndTime, run.Observation, run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create production run: %w", err)
	}
	return nil
}

// GetByID obtiene una producción; nil si no existe.
func (r *ProductionRunRepo) GetByID(id string) (*entity.ProductionRun, error) {
	query := `
		SELECT id, recipe_id, batches, date, start_time, end_time, observation, created_at
		FROM production_runs WHERE id = $1`
	var run entity.ProductionRun
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&run.ID, &run.RecipeID, &run.Batches, &run.Date, &run.StartTime, &run.EndTime, &run.Observation, &run.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get production run: %w", err)
	}
	return &run, nil
}

var _ repository.StageTransitionRepository = (*StageTransitionRepo)(nil)

// StageTransitionRepo persistencia de cambios de etapa.
type StageTransitionRepo struct {
	q Querier
}

// NewStageTransitionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStageTransitionRepository(q Querier) *StageTransitionRepo {
	return &StageTransitionRepo{q: q}
}

// Create persiste la transición.
func (r *StageTransitionRepo) Create(t *entity.StageTransition) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stage_transitions (id, source_lot_id, destination_lot_id, stage, quantity, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.SourceLotID, t.DestinationLotID, t.Stage, t.Quantity, t.Date, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stage transition: %w", err)
	}
	return nil
}

var _ repository.OutboundReleaseRepository = (*OutboundReleaseRepo)(nil)

// OutboundReleaseRepo persistencia de salidas de producto terminado.
type OutboundReleaseRepo struct {
	q Querier
}

// NewOutboundReleaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOutboundReleaseRepository(q Querier) *OutboundReleaseRepo {
	return &OutboundReleaseRepo{q: q}
}

// Create persiste la salida.
func (r *OutboundReleaseRepo) Create(rel *entity.OutboundRelease) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}
	query := `
		INSERT INTO outbound_releases (id, product_id, mode, quantity, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.q.Exec(context.Background(), query,
		rel.ID, rel.ProductID, rel.Mode, rel.Quantity, rel.Date, rel.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create outbound release: %w", err)
	}
	return nil
}
