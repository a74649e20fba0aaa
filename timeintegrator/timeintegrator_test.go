package timeintegrator

import (
	"testing"

	"github.com/notargets/idpfem/euler"
	"github.com/notargets/idpfem/hyperbolicmodule"
	"github.com/notargets/idpfem/offline"
	"github.com/stretchr/testify/assert"
)

func TestSSPRK33PreservesAdmissibility(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	a := offline.AssembleLine(32, 1.0, 24)
	mod := hyperbolicmodule.NewModule(sys, a)
	ti := &Integrator{Module: mod, Scheme: SSPRK33}

	U := make([][]float64, 32)
	for i := range U {
		if i < 16 {
			U[i] = []float64{1.0, 0, 2.5}
		} else {
			U[i] = []float64{0.125, 0, 0.25}
		}
	}
	dt, err := ti.Step(U, nil)
	assert.NoError(t, err)
	assert.Greater(t, dt, 0.0)
	for _, u := range U {
		assert.True(t, sys.IsAdmissible(u))
	}
}

func TestUnsupportedSchemeReturnsError(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	a := offline.AssembleLine(8, 1.0, 8)
	mod := hyperbolicmodule.NewModule(sys, a)
	ti := &Integrator{Module: mod, Scheme: ERK43}
	U := make([][]float64, 8)
	for i := range U {
		U[i] = []float64{1.0, 0, 2.5}
	}
	_, err := ti.Step(U, nil)
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}
