package euler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sodLeftState(s *System) []float64 {
	rho, p := 1.0, 1.0
	e := p / ((s.Gamma - 1) * rho)
	return []float64{rho, 0, rho * e}
}

func TestIdealGasAdmissibility(t *testing.T) {
	s := NewIdealGas(1, 1.4)
	U := sodLeftState(s)
	assert.True(t, s.IsAdmissible(U))
	assert.Greater(t, s.Pressure(U), 0.0)
	assert.Greater(t, s.SoundSpeed(U), 0.0)
}

func TestVacuumIsNotAdmissible(t *testing.T) {
	s := NewIdealGas(1, 1.4)
	U := []float64{0, 0, 0}
	assert.False(t, s.IsAdmissible(U))
}

func TestCovolumeCapsDensity(t *testing.T) {
	s := &System{Dim: 1, Gamma: 1.4, Covolume: 0.5}
	U := []float64{1.9, 0, 5}
	assert.True(t, s.IsAdmissible(U)) // rho < 1/b = 2: still admissible; push over
	U2 := []float64{2.5, 0, 5}
	assert.False(t, s.IsAdmissible(U2))
}

func TestFluxConservesMassForZeroVelocity(t *testing.T) {
	s := NewIdealGas(1, 1.4)
	U := sodLeftState(s)
	F := s.Flux(U, []float64{1})
	assert.Equal(t, 0.0, F[0])
}

func TestSlipBoundaryReflectsNormalMomentum(t *testing.T) {
	s := NewIdealGas(2, 1.4)
	U := []float64{1, 2, 0, 5}
	out := s.ApplyBoundaryConditions(U, []float64{1, 0}, Slip, BoundaryData{})
	assert.Equal(t, -2.0, out[1])
	assert.Equal(t, 0.0, out[2])
}

func TestSurrogateEntropyMatchesPRhoGamma(t *testing.T) {
	s := NewIdealGas(1, 1.4)
	U := sodLeftState(s)
	expect := s.Pressure(U) / math.Pow(s.Density(U), s.Gamma)
	assert.InDelta(t, expect, s.SurrogateSpecificEntropy(U), 1e-12)
}
