package repository

import "github.com/jhoicas/panaderia-api/internal/domain/entity"

// ProductionRunRepository persistencia de producciones confirmadas.
type ProductionRunRepository interface {
	Create(run *entity.ProductionRun) error
	GetByID(id string) (*entity.ProductionRun, error)
}

// StageTransitionRepository persistencia de cambios de etapa.
type StageTransitionRepository interface {
	Create(t *entity.StageTransition) error
}

// OutboundReleaseRepository persistencia de salidas de producto terminado.
type OutboundReleaseRepository interface {
	Create(r *entity.OutboundRelease) error
}
