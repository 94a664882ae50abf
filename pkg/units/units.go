// Package units centraliza la conversión unidad⇄paquete de producto
// terminado, para que el redondeo viva en un solo lugar.
package units

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrInvalidConversion conversión con unidades por paquete inválidas o
// cantidades que no cierran en paquetes completos.
var ErrInvalidConversion = errors.New("conversión unidad/paquete inválida")

// ToBaseUnits convierte paquetes a unidades base.
func ToBaseUnits(packages decimal.Decimal, unitsPerPackage int64) (decimal.Decimal, error) {
	if unitsPerPackage <= 0 || !packages.IsInteger() || packages.LessThan(decimal.Zero) {
		return decimal.Zero, ErrInvalidConversion
	}
	return packages.Mul(decimal.NewFromInt(unitsPerPackage)), nil
}

// ToPackages convierte unidades base a paquetes completos. Falla si la
// cantidad no es múltiplo exacto del tamaño de paquete.
func ToPackages(baseUnits decimal.Decimal, unitsPerPackage int64) (decimal.Decimal, error) {
	if unitsPerPackage <= 0 || !baseUnits.IsInteger() || baseUnits.LessThan(decimal.Zero) {
		return decimal.Zero, ErrInvalidConversion
	}
	per := decimal.NewFromInt(unitsPerPackage)
	if !baseUnits.Mod(per).IsZero() {
		return decimal.Zero, ErrInvalidConversion
	}
	return baseUnits.Div(per), nil
}
