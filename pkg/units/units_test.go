package units_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/panaderia-api/pkg/units"
)

func TestToBaseUnits(t *testing.T) {
	got, err := units.ToBaseUnits(decimal.NewFromInt(4), 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(20)))

	// Cero paquetes es válido.
	got, err = units.ToBaseUnits(decimal.Zero, 5)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestToBaseUnits_Invalido(t *testing.T) {
	_, err := units.ToBaseUnits(decimal.NewFromInt(4), 0)
	assert.ErrorIs(t, err, units.ErrInvalidConversion)

	_, err = units.ToBaseUnits(decimal.NewFromFloat(1.5), 5)
	assert.ErrorIs(t, err, units.ErrInvalidConversion, "los paquetes son enteros")

	_, err = units.ToBaseUnits(decimal.NewFromInt(-1), 5)
	assert.ErrorIs(t, err, units.ErrInvalidConversion)
}

func TestToPackages(t *testing.T) {
	got, err := units.ToPackages(decimal.NewFromInt(20), 5)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(4)))
}

func TestToPackages_MultiploInexacto(t *testing.T) {
	_, err := units.ToPackages(decimal.NewFromInt(22), 5)
	assert.ErrorIs(t, err, units.ErrInvalidConversion)
}
