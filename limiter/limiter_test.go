package limiter

import (
	"testing"

	"github.com/notargets/idpfem/euler"
	"github.com/stretchr/testify/assert"
)

func TestBoundsAccumulateWidensRange(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	Ui := []float64{1.0, 0, 2.5}
	var b Bounds
	b.Reset(sys, Ui)
	Uj := []float64{0.5, 0, 1.2}
	// Uj itself stands in for the edge's bar state here.
	b.Accumulate(sys, Ui, Uj, Uj, sys.SurrogateSpecificEntropy(Uj), 1.0)
	assert.LessOrEqual(t, b.RhoMin, 0.5)
	assert.GreaterOrEqual(t, b.RhoMax, 1.0)
}

func TestRelaxationCapsAtCovolumeSingularity(t *testing.T) {
	var b Bounds
	b.RhoMin, b.RhoMax, b.SMin = 1, 1.9, 0.5
	b.ApplyRelaxation(0.01, 2.0, 0.5) // singular density 1/b = 2.0
	assert.LessOrEqual(t, b.RhoMax, 2.0)
}

func TestLimitNoOpWhenAlreadyAdmissible(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	Ui := []float64{1.0, 0, 2.5}
	var b Bounds
	b.Reset(sys, Ui)
	Pij := []float64{0, 0, 0}
	l, restart := Limit(sys, b, Ui, Pij, 2, 1e-10)
	assert.False(t, restart)
	assert.Equal(t, 1.0, l)
}

func TestLimitClampsDensityDrop(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	Ui := []float64{1.0, 0, 2.5}
	var b Bounds
	b.Reset(sys, Ui)
	b.RhoMin = 0.9
	Pij := []float64{-1.0, 0, 0} // would drive rho to zero at l=1
	l, restart := Limit(sys, b, Ui, Pij, 2, 1e-10)
	assert.False(t, restart)
	assert.LessOrEqual(t, l, 0.1+1e-9)
}
