// Package offline performs the one-time continuous-Galerkin assembly that
// produces the lane-interleaved stencil (package stencilsimd) the
// hyperbolic kernel runs against: the coupling vectors c_ij, the lumped
// and consistent mass matrices, the b_ij mass-matrix correction, and the
// boundary DOF map.
//
// Grounded on gocfd/DG1D's mesh-connectivity construction (NewElements1D),
// generalized from a DG nodal basis to a plain P1 continuous-Galerkin
// stencil — the spec's DOF model is CG, not DG, so only the
// mesh-connectivity idea is reused, not the nodal/basis machinery.
// Local element matrices use gonum.org/v1/gonum/mat; the global assembly
// passes through github.com/james-bowman/sparse's DOK/CSR exactly the way
// gocfd/utils/sparse.go wires that library, before being repacked into a
// stencilsimd.Pattern.
package offline

import (
	"math"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"

	"github.com/notargets/idpfem/stencilsimd"
)

// Assembly1D holds every offline-computed quantity a 1D run needs.
type Assembly1D struct {
	Pattern      *stencilsimd.Pattern
	Cij          *stencilsimd.Matrix // single component: the x-coupling vector
	MassLumped   []float64
	MassConsist  *stencilsimd.Matrix
	Beta         *stencilsimd.Matrix
	Geometry     *stencilsimd.Matrix
	BoundaryDOFs []int
	OmegaMeasure float64
}

// localElementMatrices returns the 2x2 P1 element mass and gradient
// coupling matrices on a cell of width h, built with gonum/mat the way
// gocfd/utils/matrix.go builds its small dense helpers.
func localElementMatrices(h float64) (mass, coupling *mat.Dense) {
	mass = mat.NewDense(2, 2, []float64{
		h / 3, h / 6,
		h / 6, h / 3,
	})
	// coupling[i][j] = integral(phi_i * dphi_j/dx) over the cell (independent
	// of h): antisymmetric off-diagonal entries give c_ij = -c_ji on an
	// interior edge, and each row sums to zero, so every assembled row of
	// c_ij (boundary rows included) sums to zero.
	coupling = mat.NewDense(2, 2, []float64{
		-0.5, 0.5,
		-0.5, 0.5,
	})
	return
}

// AssembleLine builds a 1D P1 CG stencil over n nodes on a uniform mesh of
// total length length, with nInternal rows (rounded to a multiple of
// stencilsimd.LaneWidth by the Pattern builder) eligible for lane-group
// storage.
func AssembleLine(n int, length float64, nInternal int) *Assembly1D {
	h := length / float64(n-1)

	builder := stencilsimd.NewBuilder(n)
	for i := 0; i < n-1; i++ {
		builder.Connect(i, i+1)
	}
	pattern := builder.Build(nInternal)

	cijDOK := sparse.NewDOK(n, n)
	massDOK := sparse.NewDOK(n, n)
	lumped := make([]float64, n)

	mass, coupling := localElementMatrices(h)
	for e := 0; e < n-1; e++ {
		i, j := e, e+1
		for a := 0; a < 2; a++ {
			for b := 0; b < 2; b++ {
				gi, gj := nodeOf(e, a), nodeOf(e, b)
				massDOK.Set(gi, gj, massDOK.At(gi, gj)+mass.At(a, b))
				cijDOK.Set(gi, gj, cijDOK.At(gi, gj)+coupling.At(a, b))
			}
		}
		lumped[i] += h / 2
		lumped[j] += h / 2
	}
	massCSR := massDOK.ToCSR()
	cijCSR := cijDOK.ToCSR()

	cij := stencilsimd.NewMatrix(pattern)
	massConsist := stencilsimd.NewMatrix(pattern)
	beta := stencilsimd.NewMatrix(pattern)
	geometry := stencilsimd.NewMatrix(pattern)

	scatterCSR(pattern, cijCSR, cij)
	scatterCSR(pattern, massCSR, massConsist)
	computeBeta(pattern, massConsist, lumped, beta)
	computeGeometry(pattern, cij, geometry)

	return &Assembly1D{
		Pattern:      pattern,
		Cij:          cij,
		MassLumped:   lumped,
		MassConsist:  massConsist,
		Beta:         beta,
		Geometry:     geometry,
		BoundaryDOFs: []int{0, n - 1},
		OmegaMeasure: length,
	}
}

func nodeOf(elem, localIdx int) int { return elem + localIdx }

// scatterCSR copies values from a globally-assembled CSR matrix into the
// lane-interleaved Pattern's storage, one stored entry at a time. Lane
// padding slots (a self column after slot 0, which holds the diagonal)
// are left at zero.
func scatterCSR(p *stencilsimd.Pattern, csr *sparse.CSR, m *stencilsimd.Matrix) {
	for g := 0; g < p.NGroups(); g++ {
		for k := 0; k < p.RowLengthLane(g); k++ {
			for l := 0; l < stencilsimd.LaneWidth; l++ {
				row := g*stencilsimd.LaneWidth + l
				col := p.ColumnLane(g, k, l)
				if col == row && k > 0 {
					continue
				}
				m.WriteEntryLane(g, k, l, csr.At(row, col))
			}
		}
	}
	for i := 0; i < p.NOwned-p.NInternal; i++ {
		row := p.NInternal + i
		for k := 0; k < p.RowLengthScalar(i); k++ {
			col := p.ColumnScalar(i, k)
			m.WriteEntryScalar(i, k, csr.At(row, col))
		}
	}
}

// computeBeta derives b_ij = m_ij/m_i - delta_ij, the consistent-vs-lumped
// mass-matrix correction spec.md §4.G's p_ij formula needs, following
// original_source/source/hyperbolic_module.template.h's b_ij/b_ji usage.
func computeBeta(p *stencilsimd.Pattern, massConsist *stencilsimd.Matrix, lumped []float64, beta *stencilsimd.Matrix) {
	for g := 0; g < p.NGroups(); g++ {
		for k := 0; k < p.RowLengthLane(g); k++ {
			for l := 0; l < stencilsimd.LaneWidth; l++ {
				row := g*stencilsimd.LaneWidth + l
				col := p.ColumnLane(g, k, l)
				v := massConsist.GetEntryLane(g, k, l) / lumped[row]
				if row == col {
					v -= 1
				}
				beta.WriteEntryLane(g, k, l, v)
			}
		}
	}
	for i := 0; i < p.NOwned-p.NInternal; i++ {
		row := p.NInternal + i
		for k := 0; k < p.RowLengthScalar(i); k++ {
			col := p.ColumnScalar(i, k)
			v := massConsist.GetEntryScalar(i, k) / lumped[row]
			if row == col {
				v -= 1
			}
			beta.WriteEntryScalar(i, k, v)
		}
	}
}

// computeGeometry derives the stencil's geometry weight beta_ij = |c_ij|,
// the quantity original_source/source/euler_aeos/limiter.h's accumulate()
// takes as its beta_ij argument and folds into apply_relaxation's
// rho_relaxation numerator/denominator — distinct from the mass-matrix
// correction b_ij/b_ji computeBeta derives, which instead feeds the
// hyperbolic module's p_ij high-order correction.
func computeGeometry(p *stencilsimd.Pattern, cij, geometry *stencilsimd.Matrix) {
	for g := 0; g < p.NGroups(); g++ {
		for k := 0; k < p.RowLengthLane(g); k++ {
			for l := 0; l < stencilsimd.LaneWidth; l++ {
				geometry.WriteEntryLane(g, k, l, math.Abs(cij.GetEntryLane(g, k, l)))
			}
		}
	}
	for i := 0; i < p.NOwned-p.NInternal; i++ {
		for k := 0; k < p.RowLengthScalar(i); k++ {
			geometry.WriteEntryScalar(i, k, math.Abs(cij.GetEntryScalar(i, k)))
		}
	}
}
