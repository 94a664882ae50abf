package stock

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/application/ports"
	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

// Service casos de uso de stock: alta de lotes, ajustes manuales con
// trazabilidad completa y lecturas del libro de movimientos.
type Service struct {
	txRunner  ports.TxRunner
	lots      repository.LotRepository
	movements repository.MovementRepository
}

// NewService construye el servicio. Los repositorios sueltos (sobre el pool)
// atienden las lecturas; las mutaciones pasan por el TxRunner.
func NewService(txRunner ports.TxRunner, lots repository.LotRepository, movements repository.MovementRepository) *Service {
	return &Service{txRunner: txRunner, lots: lots, movements: movements}
}

// CreateLot da de alta un lote (ingreso de materia prima o carga inicial de
// producto terminado) con su asiento ENTRADA. El dueño debe existir en el
// catálogo correspondiente.
func (s *Service) CreateLot(ctx context.Context, in CreateLotInput) (*entity.Lot, error) {
	var created *entity.Lot
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		if err := ownerExists(r, in.OwnerType, in.OwnerID); err != nil {
			return err
		}
		store := NewLotStore(r.Lots, r.Movements)
		lot, err := store.CreateLot(in)
		if err != nil {
			return err
		}
		created = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ownerExists verifica que el dueño del lote figure en el catálogo de
// materias primas o de productos según su tipo.
func ownerExists(r ports.Repos, ownerType, ownerID string) error {
	switch ownerType {
	case entity.OwnerTypeMaterial:
		m, err := r.Materials.GetByID(ownerID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.ErrNotFound
		}
	case entity.OwnerTypeProduct:
		p, err := r.Products.GetByID(ownerID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// AdjustLot aplica un ajuste manual firmado (AJUSTE) sobre un lote.
func (s *Service) AdjustLot(ctx context.Context, lotID string, signedQty decimal.Decimal, reason string, asOf time.Time) (*entity.MovementEntry, error) {
	if lotID == "" || signedQty.IsZero() {
		return nil, domain.ErrInvalidInput
	}
	var entry *entity.MovementEntry
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		store := NewLotStore(r.Lots, r.Movements)
		ref := entity.MovementRef{Kind: entity.RefKindManual}
		_, e, err := store.AdjustQuantity(lotID, signedQty, entity.MovementKindAjuste, reason, ref, asOf)
		if err != nil {
			return err
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// SetLotActive habilita o deshabilita manualmente un lote. Un lote INACTIVE
// no entra en ninguna asignación hasta reactivarse.
func (s *Service) SetLotActive(ctx context.Context, lotID string, active bool, asOf time.Time) (*entity.Lot, error) {
	if lotID == "" {
		return nil, domain.ErrInvalidInput
	}
	var updated *entity.Lot
	err := s.txRunner.Run(ctx, func(r ports.Repos) error {
		lot, err := r.Lots.GetByIDForUpdate(lotID)
		if err != nil {
			return err
		}
		if lot == nil {
			return domain.ErrNotFound
		}
		if active {
			lot.State = entity.LotStateAvailable
			lot.RecomputeState()
		} else {
			lot.State = entity.LotStateInactive
		}
		lot.UpdatedAt = asOf
		if err := r.Lots.Update(lot); err != nil {
			return err
		}
		updated = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListMovements consulta paginada del libro (modelo de lectura, sin locks).
func (s *Service) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*entity.MovementEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.movements.List(filter)
}

// LotLedger devuelve el lote junto a su libro completo y el saldo que
// resulta de sumar los asientos firmados. Por construcción ese saldo
// coincide con la cantidad del lote; exponerlo permite auditarlo.
func (s *Service) LotLedger(ctx context.Context, lotID string) (*entity.Lot, []*entity.MovementEntry, decimal.Decimal, error) {
	if lotID == "" {
		return nil, nil, decimal.Zero, domain.ErrInvalidInput
	}
	lot, err := s.lots.GetByID(lotID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	if lot == nil {
		return nil, nil, decimal.Zero, domain.ErrNotFound
	}
	entries, err := s.movements.ListByLot(lotID)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	balance := decimal.Zero
	for _, e := range entries {
		balance = balance.Add(e.Quantity)
	}
	return lot, entries, balance, nil
}

// ListLots lista los lotes de un dueño, incluidos agotados e inactivos.
func (s *Service) ListLots(ctx context.Context, ownerType, ownerID string, limit, offset int) ([]*entity.Lot, error) {
	if ownerID == "" {
		return nil, domain.ErrInvalidInput
	}
	if limit <= 0 {
		limit = 50
	}
	return s.lots.ListByOwner(ownerType, ownerID, limit, offset)
}
