package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicateCode     = errors.New("código de lote duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// InsufficientStockError identifica exactamente qué falta: el dueño del stock
// (materia prima, producto o un lote puntual), lo requerido y el faltante.
// Se muestra tal cual al operador; envuelve ErrInsufficientStock para errors.Is.
type InsufficientStockError struct {
	OwnerType string
	OwnerID   string
	OwnerName string
	Required  decimal.Decimal
	Available decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	name := e.OwnerName
	if name == "" {
		name = e.OwnerID
	}
	return fmt.Sprintf("stock insuficiente de %s: requerido %s, disponible %s, faltan %s",
		name, e.Required.String(), e.Available.String(), e.Shortfall.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// NewInsufficientStock construye el error con el faltante ya calculado.
func NewInsufficientStock(ownerType, ownerID, ownerName string, required, available decimal.Decimal) *InsufficientStockError {
	return &InsufficientStockError{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Required:  required,
		Available: available,
		Shortfall: required.Sub(available),
	}
}

// DuplicateCodeError colisión de código de lote dentro del mismo dueño.
type DuplicateCodeError struct {
	OwnerID string
	Code    string
}

func (e *DuplicateCodeError) Error() string {
	return fmt.Sprintf("el código de lote %q ya existe para el dueño %s", e.Code, e.OwnerID)
}

func (e *DuplicateCodeError) Unwrap() error { return ErrDuplicateCode }
