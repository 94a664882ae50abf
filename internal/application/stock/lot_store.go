package stock

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/panaderia-api/internal/domain"
	"github.com/jhoicas/panaderia-api/internal/domain/entity"
	"github.com/jhoicas/panaderia-api/internal/domain/repository"
)

// LotStore es el único componente que muta lotes. Cada cambio de cantidad
// bloquea la fila, verifica no-negatividad, recomputa el estado y asienta el
// movimiento en el libro, todo dentro de la transacción del caller. Ningún
// otro componente escribe quantity ni stage directamente.
type LotStore struct {
	lots      repository.LotRepository
	movements repository.MovementRepository
}

// NewLotStore construye el coordinador sobre repositorios atados a la misma tx.
func NewLotStore(lots repository.LotRepository, movements repository.MovementRepository) *LotStore {
	return &LotStore{lots: lots, movements: movements}
}

// CreateLotInput datos para dar de alta un lote.
type CreateLotInput struct {
	OwnerType string
	OwnerID   string
	Code      string
	Quantity  decimal.Decimal
	IngressAt time.Time
	ExpiresAt *time.Time
	Stage     string // solo producto terminado
	Reason    string
	Ref       entity.MovementRef
}

// CreateLot inserta un lote y asienta la ENTRADA por su cantidad inicial.
// Con esto el libro da cuenta completa del saldo: sum(asientos) == cantidad.
func (s *LotStore) CreateLot(in CreateLotInput) (*entity.Lot, error) {
	if in.OwnerID == "" || in.Code == "" || in.Quantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	switch in.OwnerType {
	case entity.OwnerTypeMaterial:
		if in.Stage != "" {
			return nil, domain.ErrInvalidInput
		}
	case entity.OwnerTypeProduct:
		// El producto terminado se cuenta en unidades enteras.
		if !entity.ValidStage(in.Stage) || !in.Quantity.IsInteger() {
			return nil, domain.ErrInvalidInput
		}
	default:
		return nil, domain.ErrInvalidInput
	}

	lot := &entity.Lot{
		OwnerType: in.OwnerType,
		OwnerID:   in.OwnerID,
		Code:      in.Code,
		Quantity:  in.Quantity,
		IngressAt: in.IngressAt,
		ExpiresAt: in.ExpiresAt,
		State:     entity.LotStateAvailable,
		Stage:     in.Stage,
		CreatedAt: in.IngressAt,
		UpdatedAt: in.IngressAt,
	}
	lot.RecomputeState()
	if err := s.lots.Create(lot); err != nil {
		return nil, err
	}
	if in.Quantity.GreaterThan(decimal.Zero) {
		entry := &entity.MovementEntry{
			LotID:     lot.ID,
			Quantity:  in.Quantity,
			Kind:      entity.MovementKindEntrada,
			Reason:    in.Reason,
			RefKind:   in.Ref.Kind,
			RefID:     in.Ref.ID,
			Date:      in.IngressAt,
			CreatedAt: in.IngressAt,
		}
		if err := s.movements.Create(entry); err != nil {
			return nil, err
		}
	}
	return lot, nil
}

// AdjustQuantity aplica delta (positivo o negativo) a un lote: bloquea la
// fila, rechaza resultados negativos, recomputa el estado (DEPLETED en cero)
// y asienta el movimiento, todo en la misma transacción.
func (s *LotStore) AdjustQuantity(lotID string, delta decimal.Decimal, kind, reason string, ref entity.MovementRef, asOf time.Time) (*entity.Lot, *entity.MovementEntry, error) {
	if delta.IsZero() || !entity.ValidMovementKind(kind) {
		return nil, nil, domain.ErrInvalidInput
	}
	lot, err := s.lots.GetByIDForUpdate(lotID)
	if err != nil {
		return nil, nil, err
	}
	if lot == nil {
		return nil, nil, domain.ErrNotFound
	}
	// El producto terminado se cuenta en unidades enteras; las materias
	// primas admiten deltas fraccionarios (gramos, litros).
	if lot.OwnerType == entity.OwnerTypeProduct && !delta.IsInteger() {
		return nil, nil, domain.ErrInvalidInput
	}
	newQty := lot.Quantity.Add(delta)
	if newQty.LessThan(decimal.Zero) {
		return nil, nil, domain.NewInsufficientStock(lot.OwnerType, lot.OwnerID, lot.Code, delta.Neg(), lot.Quantity)
	}
	lot.Quantity = newQty
	lot.RecomputeState()
	lot.UpdatedAt = asOf
	if err := s.lots.Update(lot); err != nil {
		return nil, nil, err
	}
	entry := &entity.MovementEntry{
		LotID:     lot.ID,
		Quantity:  delta,
		Kind:      kind,
		Reason:    reason,
		RefKind:   ref.Kind,
		RefID:     ref.ID,
		Date:      asOf,
		CreatedAt: asOf,
	}
	if err := s.movements.Create(entry); err != nil {
		return nil, nil, err
	}
	return lot, entry, nil
}
