package riemann

import (
	"testing"

	"github.com/notargets/idpfem/euler"
	"github.com/stretchr/testify/assert"
)

func TestMaxSignalSpeedPositiveForSodStates(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	UL := []float64{1.0, 0, 2.5}    // rho=1, p=1
	UR := []float64{0.125, 0, 0.25} // rho=0.125, p=0.1
	lambda := MaxSignalSpeed(sys, UL, UR, []float64{1})
	assert.Greater(t, lambda, 0.0)
}

func TestMaxSignalSpeedSymmetricForIdenticalStates(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	U := []float64{1.0, 0, 2.5}
	lambda := MaxSignalSpeed(sys, U, U, []float64{1})
	c := sys.SoundSpeed(U)
	assert.InDelta(t, c, lambda, 1e-9)
}

func TestMaxSignalSpeedBoundedBelowForNearSonicPair(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	UL := []float64{1.0, 1.0, 2.5}
	UR := []float64{1.0, 1.0001, 2.5}
	lambda := MaxSignalSpeed(sys, UL, UR, []float64{1})
	assert.Greater(t, lambda, 0.0)
}
