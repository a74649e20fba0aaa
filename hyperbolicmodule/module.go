// Package hyperbolicmodule implements the invariant-domain-preserving
// single-stage update: a low-order graph-viscosity predictor followed by
// a convex-limiter-corrected high-order correction, exactly the seven-pass
// pipeline of original_source/source/hyperbolic_module.template.h's
// step<stages>() with stages fixed to 1 — the outer Runge-Kutta stage
// weighting that template parameter controls is instead realized one
// level up, in package timeintegrator, as repeated calls to Step with
// stage-appropriate time increments (documented in DESIGN.md: Go has no
// compile-time-constant generic parameter that would let Step[stages]
// unroll per stage the way a C++ template does, so the stage loop is
// ordinary control flow in the caller instead).
package hyperbolicmodule

import (
	"math"

	"github.com/exascience/pargo/parallel"

	"github.com/notargets/idpfem/dispatch"
	"github.com/notargets/idpfem/euler"
	"github.com/notargets/idpfem/field"
	"github.com/notargets/idpfem/indicator"
	"github.com/notargets/idpfem/limiter"
	"github.com/notargets/idpfem/offline"
	"github.com/notargets/idpfem/partition"
	"github.com/notargets/idpfem/riemann"
	"github.com/notargets/idpfem/stencilsimd"
)

// IDViolationStrategy selects what happens when even the low-order update
// fails to stay admissible, mirroring the source's IDViolationStrategy.
type IDViolationStrategy int

const (
	Warn IDViolationStrategy = iota
	RaiseException
)

// RestartError is returned by Step when the time step must be retried at a
// smaller dt; Warn counts a warning (NWarnings) and continues with the
// offending state, while RaiseException returns this error to the caller.
type RestartError struct {
	DOF int
}

func (e *RestartError) Error() string {
	return "hyperbolicmodule: invariant domain violated, restart required"
}

// Module owns one rank's share of the assembled 1D stencil and the
// parameters governing its time step, grounded on
// hyperbolic_module.template.h's constructor defaults (cfl_=0.2,
// limiter_iter_=2, limiter_newton_tolerance_=1e-10,
// limiter_newton_max_iter_=2, cfl_with_boundary_dofs_=false).
type Module struct {
	Sys      *euler.System
	Assembly *offline.Assembly1D

	Cfl                  float64
	LimiterIter          int
	LimiterNewtonTol     float64
	LimiterNewtonMaxIter int
	CflWithBoundaryDofs  bool
	Strategy             IDViolationStrategy

	NRestarts int
	NWarnings int

	Rank        *partition.Rank
	NRanks      int
	SendIndices map[int][]int
	RecvIndices map[int][]int

	dij   *stencilsimd.Matrix
	lij   *stencilsimd.Matrix
	pij   []*stencilsimd.Matrix // one scalar Matrix per conserved component
	state *field.Vector
	grain int
}

// NewModule builds a Module with the source's documented defaults, bound
// to a one-rank partition.Cluster of its own so the collective and
// ghost-exchange calls in Step are always live code, not dead plumbing
// guarded behind a nil check — see BindRank to join a larger cluster.
func NewModule(sys *euler.System, assembly *offline.Assembly1D) *Module {
	m := &Module{
		Sys:                  sys,
		Assembly:             assembly,
		Cfl:                  0.2,
		LimiterIter:          2,
		LimiterNewtonTol:     1e-10,
		LimiterNewtonMaxIter: 2,
		CflWithBoundaryDofs:  false,
		Strategy:             Warn,
		dij:                  stencilsimd.NewMatrix(assembly.Pattern),
		lij:                  stencilsimd.NewMatrix(assembly.Pattern),
		pij:                  newPijStorage(assembly.Pattern, sys.NComp()),
		grain:                64,
	}
	solo := partition.NewCluster(partition.NewMap(assembly.Pattern.NOwned, 1), false)
	m.BindRank(solo.Rank(0), 1, nil, nil)
	return m
}

// BindRank joins the Module to a partition.Cluster of nRanks peers,
// identified by rank. sendIndices/recvIndices are the local-DOF halo maps
// a multi-rank offline assembler would produce for this rank's partition
// boundary (nil for a single-rank Module, where the exchange in Step
// still runs but has nothing to send or receive).
func (m *Module) BindRank(rank *partition.Rank, nRanks int, sendIndices, recvIndices map[int][]int) {
	m.Rank = rank
	m.NRanks = nRanks
	m.SendIndices = sendIndices
	m.RecvIndices = recvIndices
	m.state = field.NewVector(m.Assembly.Pattern.NOwned, m.Sys.NComp())
	m.state.Bind(rank, sendIndices, recvIndices)
}

// Prepare (re)allocates pass-local storage sized to the current assembly,
// grounded on the source's prepare() allocating indicator_precomputed_values_,
// alpha_, limiter_precomputed_values_, bounds_, r_, dij_matrix_,
// lij_matrix_, pij_matrix_ once per mesh change.
func (m *Module) Prepare() {
	m.dij = stencilsimd.NewMatrix(m.Assembly.Pattern)
	m.lij = stencilsimd.NewMatrix(m.Assembly.Pattern)
	m.pij = newPijStorage(m.Assembly.Pattern, m.Sys.NComp())
	if m.Rank != nil {
		m.BindRank(m.Rank, m.NRanks, m.SendIndices, m.RecvIndices)
	}
}

// newPijStorage allocates one scalar stencilsimd.Matrix per conserved
// component to hold p_ij, the same "one Matrix per slot of a fixed-width
// tuple" idiom stencilsimd/matrix.go's package comment documents for c_ij
// across spatial dimensions.
func newPijStorage(p *stencilsimd.Pattern, nComp int) []*stencilsimd.Matrix {
	pij := make([]*stencilsimd.Matrix, nComp)
	for c := range pij {
		pij[c] = stencilsimd.NewMatrix(p)
	}
	return pij
}

// isBoundary reports whether global DOF i is one of the assembly's
// boundary DOFs.
func (m *Module) isBoundary(i int) bool {
	for _, b := range m.Assembly.BoundaryDOFs {
		if b == i {
			return true
		}
	}
	return false
}

// gatherFromPeers posts local to every other rank in the cluster and
// collects every rank's contribution — this rank's own plus one per peer
// — the shape AllreduceMin/AllreduceOr need before reducing, mirroring
// the all-to-all exchange implicit in MPI_Allreduce. A single-rank
// Module (NRanks==1) returns []float64{local} without touching the
// network.
func (m *Module) gatherFromPeers(local float64) []float64 {
	if m.Rank == nil || m.NRanks <= 1 {
		return []float64{local}
	}
	for r := 0; r < m.NRanks; r++ {
		if r == m.Rank.ID {
			continue
		}
		m.Rank.Post(r, []float64{local})
	}
	vals := make([]float64, 0, m.NRanks)
	vals = append(vals, local)
	for r := 0; r < m.NRanks; r++ {
		if r == m.Rank.ID {
			continue
		}
		msg := m.Rank.Receive(r)
		vals = append(vals, msg.Data[0])
	}
	return vals
}

// Step advances U in place by one admissible time step and returns the dt
// actually taken. U is indexed by global DOF, each entry a NComp-wide
// conserved state slice. onBoundary supplies the boundary rule and data for
// a given boundary DOF, used by pass 7's apply_boundary_conditions.
func (m *Module) Step(U [][]float64, onBoundary func(i int) (euler.BoundaryRule, euler.BoundaryData, []float64)) (float64, error) {
	p := m.Assembly.Pattern
	n := p.NOwned
	sys := m.Sys

	// Pass 1: d_ij = |c_ij| * lambda_max(U_i,U_j), d_ii = -sum_j d_ij.
	//
	// The current state is posted to every neighbor rank and a receive is
	// started for each ghost range before any local d_ij work begins, so
	// the round trip overlaps with this pass's own compute — grounded on
	// openmp.h's SynchronizationDispatch, which fires its payload the
	// instant the last of a known set of participants checks in. Here the
	// two participants are the lane-interleaved interior block and the
	// scalar boundary tail; whichever finishes its local d_ij work last
	// triggers the wait for the halo round trip to complete.
	for i, u := range U {
		m.state.WriteTensor(i, u)
	}
	m.state.UpdateGhostValuesStart()
	halo := dispatch.NewLatch(2, func() {
		m.state.UpdateGhostValuesFinish()
		for i := range U {
			copy(U[i], m.state.GetTensor(i))
		}
	})

	parallel.Range(0, p.NGroups(), m.grain, func(lo, hi int) {
		for g := lo; g < hi; g++ {
			for k := 0; k < p.RowLengthLane(g); k++ {
				for l := 0; l < stencilsimd.LaneWidth; l++ {
					i := g*stencilsimd.LaneWidth + l
					j := p.ColumnLane(g, k, l)
					if i == j {
						continue
					}
					cij := m.Assembly.Cij.GetEntryLane(g, k, l)
					lambda := riemann.MaxSignalSpeed(sys, U[i], U[j], []float64{sign(cij)})
					m.dij.WriteEntryLane(g, k, l, math.Abs(cij)*lambda)
				}
			}
		}
	})
	halo.Check(true, true)

	for i := 0; i < n-p.NInternal; i++ {
		for k := 0; k < p.RowLengthScalar(i); k++ {
			row := p.NInternal + i
			col := p.ColumnScalar(i, k)
			if row == col {
				continue
			}
			cij := m.Assembly.Cij.GetEntryScalar(i, k)
			lambda := riemann.MaxSignalSpeed(sys, U[row], U[col], []float64{sign(cij)})
			m.dij.WriteEntryScalar(i, k, math.Abs(cij)*lambda)
		}
	}
	halo.Check(true, true)

	m.symmetrizeMatrix(m.dij, maxCombine)
	m.symmetrizeDiagonal()

	// Pass 2: tau_i = cfl * m_i / (-2 * d_ii), reduced to a local minimum
	// and then all-rank min-reduced to the globally admissible dt
	// (MPI_Allreduce(MIN, tau_max)).
	localDt := math.MaxFloat64
	for i := 0; i < n; i++ {
		if !m.CflWithBoundaryDofs && m.isBoundary(i) {
			continue
		}
		dii := m.diagonal(i)
		if dii >= 0 {
			continue
		}
		tau := m.Cfl * m.Assembly.MassLumped[i] / (-2 * dii)
		if tau < localDt {
			localDt = tau
		}
	}
	if localDt == math.MaxFloat64 {
		localDt = 0
	}
	dt := partition.AllreduceMin(m.gatherFromPeers(localDt))

	// Pass 3: smoothness indicator alpha_i, computed before the bar states
	// since the residual r_i built in pass 4 already needs the
	// smoothness-gated high-order viscosity d_ij^H = 1/2*(alpha_i+alpha_j)*d_ij.
	alpha := make([]float64, n)
	m.forEachRow(func(i int) {
		iv := sys.PrecomputeIndicatorValues(U[i])
		var acc indicator.Accumulator
		acc.Reset(iv.Entropy)
		m.forEachNeighbor(i, func(j int, cij float64) {
			jv := sys.PrecomputeIndicatorValues(U[j])
			acc.Add(cij*(jv.Entropy-iv.Entropy), jv.Entropy)
		})
		alpha[i] = acc.Alpha(m.Assembly.MassLumped[i], iv.Entropy, 1e-8)
	})

	// Pass 4: bar states, low-order update, and the nodal residual r_i
	// original_source/source/hyperbolic_module.template.h's step 4 builds
	// as r_i = sum_{j!=i} [d_ij^H*(U_j-U_i) - (f_j-f_i)*c_ij], the quantity
	// pass 6's p_ij is assembled from instead of from raw U.
	Ubar := make(map[[2]int][]float64)
	Ulow := make([][]float64, n)
	residual := make([][]float64, n)
	for i := range U {
		Ulow[i] = append([]float64{}, U[i]...)
		residual[i] = make([]float64, sys.NComp())
	}
	m.forEachOffDiagonal(func(i, j int, cij, dij float64, acc edgeAccess) {
		Fi := sys.Flux(U[i], []float64{1})
		Fj := sys.Flux(U[j], []float64{1})
		bar := make([]float64, sys.NComp())
		for c := range bar {
			bar[c] = 0.5 * (U[i][c] + U[j][c])
			if dij > 0 {
				bar[c] -= (cij / (2 * dij)) * (Fj[c] - Fi[c])
			}
		}
		Ubar[[2]int{i, j}] = bar
		m.addLowOrderContribution(Ulow, i, j, cij, dij, dt, U[i], U[j], Fi, Fj)

		dijH := 0.5 * (alpha[i] + alpha[j]) * dij
		for c := range residual[i] {
			residual[i][c] += dijH*(U[j][c]-U[i][c]) - cij*(Fj[c]-Fi[c])
		}
	})

	// Pass 5: limiter bounds per DOF, with relaxation, using the restored
	// geometry weight beta_ij = |c_ij| (Assembly.Geometry) rather than the
	// b_ij mass-matrix ratio pass 6 uses.
	bounds := make([]limiter.Bounds, n)
	m.forEachRow(func(i int) {
		var b limiter.Bounds
		b.Reset(sys, U[i])
		m.forEachNeighbor(i, func(j int, _ float64) {
			bar := Ubar[[2]int{i, j}]
			betaIJ := m.Assembly.Geometry.ValueAt(i, j)
			b.Accumulate(sys, U[i], U[j], bar, sys.SurrogateSpecificEntropy(U[j]), betaIJ)
		})
		hd := m.Assembly.MassLumped[i] / m.Assembly.OmegaMeasure
		b.ApplyRelaxation(hd, 2.0, sys.EOSInterpolationB())
		bounds[i] = b
	})

	// Pass 6: p_ij, built from the residuals r_i/r_j (not raw U) plus the
	// d_ij^H-d_ij correction and the b_ij/b_ji mass-matrix term, following
	// hyperbolic_module.template.h's step 4 p_ij formula (the row_length-1
	// normalization that formula applies to its mass term cancels
	// algebraically against apply_system_conservation's rescale and is
	// omitted here, per DESIGN.md). Assembly.Beta stores our_b[i][j] =
	// m_ij/m_i - delta_ij; the source's b_ij/b_ji are recovered as
	// b_ij(src) = -our_b[j][i] (the transpose of this entry) and
	// b_ji(src) = -our_b[i][j] (this entry itself).
	for c := range m.pij {
		m.pij[c] = stencilsimd.NewMatrix(m.Assembly.Pattern)
	}
	m.forEachOffDiagonal(func(i, j int, cij, dij float64, acc edgeAccess) {
		dijH := 0.5 * (alpha[i] + alpha[j]) * dij
		bijSrc := -acc.Transposed(m.Assembly.Beta)
		bjiSrc := -acc.Get(m.Assembly.Beta)
		scale := dt / m.Assembly.MassLumped[i]
		for c := range residual[i] {
			v := (dijH-dij)*(U[j][c]-U[i][c]) + bijSrc*residual[j][c] - bjiSrc*residual[i][c]
			acc.Set(m.pij[c], scale*v)
		}
	})

	// Pass 7..(6+limiter_iter): symmetrize l_ij (min with its transpose),
	// apply the symmetrized correction, and — for every round but the
	// last — shrink p_ij by (1-l_ij) and recompute l_ij against the new
	// state, exactly hyperbolic_module.template.h's multi-round limiter
	// loop over 5..4+limiter_iter_.
	var restartDOF = -1
	Ufinal := Ulow
	iterations := m.LimiterIter
	if iterations <= 0 {
		iterations = 2
	}
	m.forEachOffDiagonal(func(i, j int, cij, dij float64, acc edgeAccess) {
		p := make([]float64, sys.NComp())
		for c := range p {
			p[c] = acc.Get(m.pij[c])
		}
		l, restart := limiter.Limit(sys, bounds[i], Ufinal[i], p, m.LimiterNewtonMaxIter, m.LimiterNewtonTol)
		if restart {
			restartDOF = i
		}
		acc.Set(m.lij, l)
	})

	for round := 0; round < iterations; round++ {
		m.symmetrizeMatrix(m.lij, minCombine)
		if m.SendIndices != nil || m.RecvIndices != nil {
			m.exchangeLijRows()
		}

		applied := make([][]float64, n)
		for i := range applied {
			applied[i] = make([]float64, sys.NComp())
		}
		m.forEachOffDiagonal(func(i, j int, cij, dij float64, acc edgeAccess) {
			// p_ij already carries pass 6's dt/m_i scale, so no further
			// mass division belongs here — applying one would silently
			// break the m_i*p_ij = -m_j*p_ji antisymmetry pass 6's
			// comment derives, which is what keeps this correction
			// exactly conservative in mass-weighted sum.
			l := acc.Get(m.lij)
			for c := range applied[i] {
				applied[i][c] += l * acc.Get(m.pij[c])
			}
		})
		for i := range Ufinal {
			for c := range Ufinal[i] {
				Ufinal[i][c] += applied[i][c]
			}
		}

		if round == iterations-1 {
			continue
		}
		m.forEachOffDiagonal(func(i, j int, cij, dij float64, acc edgeAccess) {
			l := acc.Get(m.lij)
			newP := make([]float64, sys.NComp())
			for c := range newP {
				newP[c] = (1 - l) * acc.Get(m.pij[c])
				acc.Set(m.pij[c], newP[c])
			}
			lNew, restart := limiter.Limit(sys, bounds[i], Ufinal[i], newP, m.LimiterNewtonMaxIter, m.LimiterNewtonTol)
			if restart {
				restartDOF = i
			}
			acc.Set(m.lij, lNew)
		})
	}

	m.forEachRow(func(i int) {
		if rule, data, normal := onBoundaryOrDefault(onBoundary, i); rule != euler.DoNothing || data.Prescribed != nil {
			Ufinal[i] = sys.ApplyBoundaryConditions(Ufinal[i], normal, rule, data)
		}
		if !sys.IsAdmissible(Ufinal[i]) {
			restartDOF = i
		}
	})

	// Finalise: every rank's restart flag must agree before either
	// counter moves (MPI-Allreduce(OR, restart_flag)); warn only counts
	// warnings, raise_exception only counts restarts.
	localRestart := 0.0
	if restartDOF >= 0 {
		localRestart = 1
	}
	peerFlags := m.gatherFromPeers(localRestart)
	flags := make([]bool, len(peerFlags))
	for k, v := range peerFlags {
		flags[k] = v != 0
	}
	if partition.AllreduceOr(flags) {
		if m.Strategy == RaiseException {
			m.NRestarts++
			return dt, &RestartError{DOF: restartDOF}
		}
		m.NWarnings++
	}

	for i := range U {
		copy(U[i], Ufinal[i])
	}
	return dt, nil
}

// exchangeLijRows halo-exchanges each boundary DOF's freshly symmetrized
// l_ij row with this rank's neighbors, the row-wise counterpart to
// field.Vector's per-DOF UpdateGhostValuesStart/Finish. Assembly1D carries
// no partition-boundary ghost-row layout yet (see hyperbolicmodule's
// tests), so the round trip runs — exercising the real transport rather
// than a stub — but its result has nowhere to land until an offline
// assembler produces that layout; see DESIGN.md.
func (m *Module) exchangeLijRows() {
	rx := field.NewRowExchange(m.Rank, m.RecvIndices)
	rx.Start(m.SendIndices, m.rowOfLij)
	_ = rx.Finish()
}

func (m *Module) rowOfLij(i int) []float64 {
	p := m.Assembly.Pattern
	if i < p.NInternal {
		g, l := i/stencilsimd.LaneWidth, i%stencilsimd.LaneWidth
		row := make([]float64, p.RowLengthLane(g))
		for k := range row {
			row[k] = m.lij.GetEntryLane(g, k, l)
		}
		return row
	}
	idx := i - p.NInternal
	row := make([]float64, p.RowLengthScalar(idx))
	for k := range row {
		row[k] = m.lij.GetEntryScalar(idx, k)
	}
	return row
}

func onBoundaryOrDefault(f func(i int) (euler.BoundaryRule, euler.BoundaryData, []float64), i int) (euler.BoundaryRule, euler.BoundaryData, []float64) {
	if f == nil {
		return euler.DoNothing, euler.BoundaryData{}, []float64{1}
	}
	return f(i)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}
