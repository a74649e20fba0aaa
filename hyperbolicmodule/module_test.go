package hyperbolicmodule

import (
	"math"
	"sync"
	"testing"

	"github.com/notargets/idpfem/euler"
	"github.com/notargets/idpfem/offline"
	"github.com/notargets/idpfem/partition"
	"github.com/stretchr/testify/assert"
)

func sodInit(sys *euler.System, n int) [][]float64 {
	U := make([][]float64, n)
	for i := 0; i < n; i++ {
		if i < n/2 {
			U[i] = []float64{1.0, 0, 2.5}
		} else {
			U[i] = []float64{0.125, 0, 0.25}
		}
	}
	return U
}

func TestStepPreservesAdmissibilityOnSod(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	a := offline.AssembleLine(32, 1.0, 24)
	m := NewModule(sys, a)

	U := sodInit(sys, 32)
	dt, err := m.Step(U, nil)
	assert.NoError(t, err)
	assert.Greater(t, dt, 0.0)
	for i, u := range U {
		assert.True(t, sys.IsAdmissible(u), "dof %d not admissible: %v", i, u)
	}
}

// TestStepConservesTotalMassOnPeriodicInterior checks the lumped-mass
// conservation identity sum_i m_i*U_i[0] every pass of the kernel must
// preserve up to round-off: pass 4's low-order update, pass 6's p_ij, and
// the limiter's l_ij*p_ij correction all redistribute mass between DOFs
// along antisymmetric c_ij/d_ij/p_ij pairs without a boundary flux term
// (the Sod state's discontinuity sits away from the two endpoints), so
// the mass-weighted sum is invariant rather than merely close.
func TestStepConservesTotalMassOnPeriodicInterior(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	a := offline.AssembleLine(32, 1.0, 24)
	m := NewModule(sys, a)
	U := sodInit(sys, 32)

	massWeightedDensity := func() float64 {
		total := 0.0
		for i, u := range U {
			total += a.MassLumped[i] * sys.Density(u)
		}
		return total
	}

	before := massWeightedDensity()
	_, err := m.Step(U, nil)
	assert.NoError(t, err)
	after := massWeightedDensity()
	assert.InDelta(t, before, after, 1e-9*math.Abs(before))
}

func TestNoopStepOnUniformStateReturnsUnchanged(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	a := offline.AssembleLine(16, 1.0, 8)
	m := NewModule(sys, a)
	U := make([][]float64, 16)
	for i := range U {
		U[i] = []float64{1.0, 0, 2.5}
	}
	_, err := m.Step(U, nil)
	assert.NoError(t, err)
	for _, u := range U {
		assert.InDelta(t, 1.0, u[0], 1e-9)
		assert.InDelta(t, 2.5, u[2], 1e-9)
	}
}

// TestStepReducesDtAndRestartAcrossRanks exercises the Allreduce(MIN)/
// Allreduce(OR) collectives that Finalise requires: two Modules bound to
// the same two-rank Cluster, one configured with half the other's CFL
// number, must agree on the smaller rank's dt once Step's collective
// reduction runs. The ghost-DOF exchange itself stays vacuous here (no
// send/recv indices) since Assembly1D has no partition-boundary layout
// yet; this isolates the collective wiring from that gap.
func TestStepReducesDtAndRestartAcrossRanks(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	a0 := offline.AssembleLine(16, 1.0, 8)
	a1 := offline.AssembleLine(16, 1.0, 8)

	cluster := partition.NewCluster(partition.NewMap(16, 2), false)
	m0 := NewModule(sys, a0)
	m1 := NewModule(sys, a1)
	m0.BindRank(cluster.Rank(0), 2, nil, nil)
	m1.BindRank(cluster.Rank(1), 2, nil, nil)
	m1.Cfl = m0.Cfl / 2

	U0 := sodInit(sys, 16)
	U1 := sodInit(sys, 16)

	var dt0, dt1 float64
	var err0, err1 error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); dt0, err0 = m0.Step(U0, nil) }()
	go func() { defer wg.Done(); dt1, err1 = m1.Step(U1, nil) }()
	wg.Wait()

	assert.NoError(t, err0)
	assert.NoError(t, err1)
	assert.InDelta(t, dt0, dt1, 1e-12)
}
