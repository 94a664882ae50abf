package ports

import (
	"context"

	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Lots        repository.LotRepository
	Movements   repository.MovementRepository
	Recipes     repository.RecipeRepository
	Products    repository.ProductRepository
	Materials   repository.MaterialRepository
	Runs        repository.ProductionRunRepository
	Transitions repository.StageTransitionRepository
	Releases    repository.OutboundReleaseRepository
}

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad: o toda la operación
// (decrementos de lotes, asientos del libro, lotes creados) se confirma, o
// nada se escribe.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
