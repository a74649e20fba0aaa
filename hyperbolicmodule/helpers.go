package hyperbolicmodule

import (
	"github.com/exascience/pargo/parallel"

	"github.com/notargets/idpfem/stencilsimd"
)

// forEachRow calls f once per owned DOF. The lane-interleaved interior
// block is split into worker-sized chunks of lane groups via
// pargo/parallel.Range (each chunk touches disjoint rows, so no row's
// write ever races another's); the scalar tail is small enough that
// original_source/source/hyperbolic_module.template.h's own non-vectorized
// loop runs it in the calling goroutine instead of spinning up a second
// worker team for it.
func (m *Module) forEachRow(f func(i int)) {
	p := m.Assembly.Pattern
	parallel.Range(0, p.NGroups(), m.grain, func(lo, hi int) {
		for g := lo; g < hi; g++ {
			for l := 0; l < stencilsimd.LaneWidth; l++ {
				f(g*stencilsimd.LaneWidth + l)
			}
		}
	})
	for i := p.NInternal; i < p.NOwned; i++ {
		f(i)
	}
}

// forEachNeighbor calls f once per stored off-diagonal neighbor j of row i,
// passing the coupling-vector value c_ij.
func (m *Module) forEachNeighbor(i int, f func(j int, cij float64)) {
	p := m.Assembly.Pattern
	if i < p.NInternal {
		g, l := i/stencilsimd.LaneWidth, i%stencilsimd.LaneWidth
		for k := 0; k < p.RowLengthLane(g); k++ {
			j := p.ColumnLane(g, k, l)
			if j == i {
				continue
			}
			f(j, m.Assembly.Cij.GetEntryLane(g, k, l))
		}
		return
	}
	idx := i - p.NInternal
	for k := 0; k < p.RowLengthScalar(idx); k++ {
		j := p.ColumnScalar(idx, k)
		if j == i {
			continue
		}
		f(j, m.Assembly.Cij.GetEntryScalar(idx, k))
	}
}

// edgeAccess addresses one stored off-diagonal stencil entry the way
// stencilsimd.Pattern itself does — either (lane group g, slot k, lane l)
// or (scalar row i, slot k) — so a pass visiting that entry through
// forEachOffDiagonal can read or write any Matrix sharing the Pattern
// (dij, the per-component pij matrices, lij) without a second adjacency
// lookup, and can fetch the transposed entry (j,i) the same way
// symmetrizeMatrix and the b_ij/b_ji mass-correction term need.
type edgeAccess struct {
	lane       bool
	g, k, l    int
	row, kScal int
}

func (a edgeAccess) Get(mat *stencilsimd.Matrix) float64 {
	if a.lane {
		return mat.GetEntryLane(a.g, a.k, a.l)
	}
	return mat.GetEntryScalar(a.row, a.kScal)
}

func (a edgeAccess) Set(mat *stencilsimd.Matrix, v float64) {
	if a.lane {
		mat.WriteEntryLane(a.g, a.k, a.l, v)
	} else {
		mat.WriteEntryScalar(a.row, a.kScal, v)
	}
}

func (a edgeAccess) Transposed(mat *stencilsimd.Matrix) float64 {
	if a.lane {
		return mat.GetTransposedEntryLane(a.g, a.k, a.l)
	}
	return mat.GetTransposedEntryScalar(a.row, a.kScal)
}

// forEachOffDiagonal calls f once per stored (i,j) off-diagonal pair,
// together with c_ij, the d_ij value pass 1 computed for that entry, and
// an edgeAccess handle for reading/writing any other Matrix sharing the
// Pattern at this same entry. The lane-interleaved block is chunked across
// workers the same way forEachRow splits it — every visited entry's row i
// belongs to exactly one chunk, so concurrent writes to per-row
// accumulators (e.g. a residual r[i]) never race.
func (m *Module) forEachOffDiagonal(f func(i, j int, cij, dij float64, acc edgeAccess)) {
	p := m.Assembly.Pattern
	parallel.Range(0, p.NGroups(), m.grain, func(lo, hi int) {
		for g := lo; g < hi; g++ {
			for k := 0; k < p.RowLengthLane(g); k++ {
				for l := 0; l < stencilsimd.LaneWidth; l++ {
					i := g*stencilsimd.LaneWidth + l
					j := p.ColumnLane(g, k, l)
					if i == j {
						continue
					}
					f(i, j, m.Assembly.Cij.GetEntryLane(g, k, l), m.dij.GetEntryLane(g, k, l),
						edgeAccess{lane: true, g: g, k: k, l: l})
				}
			}
		}
	})
	for i := 0; i < p.NOwned-p.NInternal; i++ {
		row := p.NInternal + i
		for k := 0; k < p.RowLengthScalar(i); k++ {
			col := p.ColumnScalar(i, k)
			if row == col {
				continue
			}
			f(row, col, m.Assembly.Cij.GetEntryScalar(i, k), m.dij.GetEntryScalar(i, k),
				edgeAccess{lane: false, row: i, kScal: k})
		}
	}
}

// diagonal returns d_ii, the negative row sum pass 1 writes onto the
// stencil's self entry.
func (m *Module) diagonal(i int) float64 {
	p := m.Assembly.Pattern
	if i < p.NInternal {
		g, l := i/stencilsimd.LaneWidth, i%stencilsimd.LaneWidth
		for k := 0; k < p.RowLengthLane(g); k++ {
			if p.ColumnLane(g, k, l) == i {
				return m.dij.GetEntryLane(g, k, l)
			}
		}
		return 0
	}
	idx := i - p.NInternal
	for k := 0; k < p.RowLengthScalar(idx); k++ {
		if p.ColumnScalar(idx, k) == i {
			return m.dij.GetEntryScalar(idx, k)
		}
	}
	return 0
}

// symmetrizeMatrix folds every stored off-diagonal entry of mat with its
// transpose via combine, writing the result back into the entry visited.
// Since max and min are both idempotent or comparisons (combine(v,
// combine(v,vt)) == combine(v,vt)), a single forward pass over every
// stored entry — visiting (i,j) and (j,i) independently, in either order —
// leaves both copies holding the same symmetrized value, the way
// original_source/source/hyperbolic_module.template.h's step 2 does for
// d_ij (max, via the Riemann solver's broken left/right symmetry) and step
// 5's l_ij (min, via original_source/source/hyperbolic_module.template.h's
// "Symmetrize l_ij" loop).
func (m *Module) symmetrizeMatrix(mat *stencilsimd.Matrix, combine func(v, vt float64) float64) {
	p := m.Assembly.Pattern
	for g := 0; g < p.NGroups(); g++ {
		for k := 0; k < p.RowLengthLane(g); k++ {
			for l := 0; l < stencilsimd.LaneWidth; l++ {
				i := g*stencilsimd.LaneWidth + l
				j := p.ColumnLane(g, k, l)
				if i == j {
					continue
				}
				v := mat.GetEntryLane(g, k, l)
				vt := mat.GetTransposedEntryLane(g, k, l)
				mat.WriteEntryLane(g, k, l, combine(v, vt))
			}
		}
	}
	for i := 0; i < p.NOwned-p.NInternal; i++ {
		row := p.NInternal + i
		for k := 0; k < p.RowLengthScalar(i); k++ {
			col := p.ColumnScalar(i, k)
			if row == col {
				continue
			}
			v := mat.GetEntryScalar(i, k)
			vt := mat.GetTransposedEntryScalar(i, k)
			mat.WriteEntryScalar(i, k, combine(v, vt))
		}
	}
}

func maxCombine(v, vt float64) float64 {
	if vt > v {
		return vt
	}
	return v
}

func minCombine(v, vt float64) float64 {
	if vt < v {
		return vt
	}
	return v
}

// addLowOrderContribution folds directed edge (i,j)'s low-order graph
// viscosity update into Ulow[i]: m_i(U_i^{n+1}-U_i)/dt = sum_{j!=i}
// [d_ij(U_j-U_i) - (f_j-f_i)*c_ij], grounded on
// original_source/source/hyperbolic_module.template.h's step 3. Called
// once per stored direction, so a full pass over forEachOffDiagonal
// (which visits both (i,j) and (j,i)) accumulates every row's complete
// sum without double-counting.
func (m *Module) addLowOrderContribution(Ulow [][]float64, i, j int, cij, dij, dt float64, Ui, Uj, Fi, Fj []float64) {
	scale := dt / m.Assembly.MassLumped[i]
	for c := range Ulow[i] {
		Ulow[i][c] += scale * (dij*(Uj[c]-Ui[c]) - cij*(Fj[c]-Fi[c]))
	}
}

// symmetrizeDiagonal writes d_ii = -sum_{j!=i} d_ij for every row, the
// row-sum-zero closure pass 1 needs.
func (m *Module) symmetrizeDiagonal() {
	p := m.Assembly.Pattern
	for g := 0; g < p.NGroups(); g++ {
		for l := 0; l < stencilsimd.LaneWidth; l++ {
			i := g*stencilsimd.LaneWidth + l
			sum := 0.0
			diagK := -1
			for k := 0; k < p.RowLengthLane(g); k++ {
				j := p.ColumnLane(g, k, l)
				if j == i {
					if diagK < 0 {
						diagK = k
					}
					continue
				}
				sum += m.dij.GetEntryLane(g, k, l)
			}
			if diagK >= 0 {
				m.dij.WriteEntryLane(g, diagK, l, -sum)
			}
		}
	}
	for i := 0; i < p.NOwned-p.NInternal; i++ {
		row := p.NInternal + i
		sum := 0.0
		diagK := -1
		for k := 0; k < p.RowLengthScalar(i); k++ {
			col := p.ColumnScalar(i, k)
			if col == row {
				diagK = k
				continue
			}
			sum += m.dij.GetEntryScalar(i, k)
		}
		if diagK >= 0 {
			m.dij.WriteEntryScalar(i, diagK, -sum)
		}
	}
}
