package offline

import (
	"github.com/james-bowman/sparse"

	"github.com/notargets/idpfem/stencilsimd"
)

// Assembly2D mirrors Assembly1D but carries two coupling components, one
// per spatial dimension, as spec.md §4.A requires one Matrix per
// dimension of c_ij.
type Assembly2D struct {
	Pattern      *stencilsimd.Pattern
	Cij          [2]*stencilsimd.Matrix
	MassLumped   []float64
	MassConsist  *stencilsimd.Matrix
	Beta         *stencilsimd.Matrix
	BoundaryDOFs []int
	OmegaMeasure float64
}

// AssembleGrid2D builds a structured nx*ny bilinear P1 CG stencil over a
// rectangle lx*ly, generalizing AssembleLine's five-point (here, up to
// nine-point) connectivity to two dimensions.
func AssembleGrid2D(nx, ny int, lx, ly float64, nInternal int) *Assembly2D {
	n := nx * ny
	hx, hy := lx/float64(nx-1), ly/float64(ny-1)
	cellArea := hx * hy

	idx := func(ix, iy int) int { return iy*nx + ix }

	builder := stencilsimd.NewBuilder(n)
	for iy := 0; iy < ny; iy++ {
		for ix := 0; ix < nx; ix++ {
			i := idx(ix, iy)
			if ix+1 < nx {
				builder.Connect(i, idx(ix+1, iy))
			}
			if iy+1 < ny {
				builder.Connect(i, idx(ix, iy+1))
			}
		}
	}
	pattern := builder.Build(nInternal)

	massDOK := sparse.NewDOK(n, n)
	cxDOK := sparse.NewDOK(n, n)
	cyDOK := sparse.NewDOK(n, n)
	lumped := make([]float64, n)

	// Bilinear Q1 element on a hx*hy rectangle: 4 local nodes, mass and
	// half-gradient-coupling contributions computed per cell and scattered
	// to the four corner DOFs, matching the structural pattern of
	// AssembleLine's element loop generalized to two dimensions.
	for iy := 0; iy < ny-1; iy++ {
		for ix := 0; ix < nx-1; ix++ {
			corners := [4]int{idx(ix, iy), idx(ix+1, iy), idx(ix+1, iy+1), idx(ix, iy+1)}
			localMass, localCx, localCy := bilinearElementMatrices(hx, hy)
			for a := 0; a < 4; a++ {
				for b := 0; b < 4; b++ {
					gi, gj := corners[a], corners[b]
					massDOK.Set(gi, gj, massDOK.At(gi, gj)+localMass[a][b])
					cxDOK.Set(gi, gj, cxDOK.At(gi, gj)+localCx[a][b])
					cyDOK.Set(gi, gj, cyDOK.At(gi, gj)+localCy[a][b])
				}
			}
			for _, c := range corners {
				lumped[c] += cellArea / 4
			}
		}
	}

	massCSR := massDOK.ToCSR()
	cxCSR := cxDOK.ToCSR()
	cyCSR := cyDOK.ToCSR()

	massConsist := stencilsimd.NewMatrix(pattern)
	cx := stencilsimd.NewMatrix(pattern)
	cy := stencilsimd.NewMatrix(pattern)
	beta := stencilsimd.NewMatrix(pattern)

	scatterCSR(pattern, massCSR, massConsist)
	scatterCSR(pattern, cxCSR, cx)
	scatterCSR(pattern, cyCSR, cy)
	computeBeta(pattern, massConsist, lumped, beta)

	boundary := []int{}
	for ix := 0; ix < nx; ix++ {
		boundary = append(boundary, idx(ix, 0), idx(ix, ny-1))
	}
	for iy := 1; iy < ny-1; iy++ {
		boundary = append(boundary, idx(0, iy), idx(nx-1, iy))
	}

	return &Assembly2D{
		Pattern:      pattern,
		Cij:          [2]*stencilsimd.Matrix{cx, cy},
		MassLumped:   lumped,
		MassConsist:  massConsist,
		Beta:         beta,
		BoundaryDOFs: boundary,
		OmegaMeasure: lx * ly,
	}
}

// bilinearElementMatrices returns the 4x4 local mass matrix and the two
// 4x4 half-gradient-coupling matrices (x and y) for a bilinear Q1 element
// on a hx*hy rectangle, evaluated with a 2x2 Gauss quadrature rule.
func bilinearElementMatrices(hx, hy float64) (mass, cx, cy [4][4]float64) {
	gp := 1.0 / 1.7320508075688772 // 1/sqrt(3), 2-point Gauss location on [-1,1]
	pts := [2]float64{-gp, gp}
	wx, wy := hx/2, hy/2

	shape := func(xi, eta float64) (n [4]float64, dnx, dny [4]float64) {
		n[0] = 0.25 * (1 - xi) * (1 - eta)
		n[1] = 0.25 * (1 + xi) * (1 - eta)
		n[2] = 0.25 * (1 + xi) * (1 + eta)
		n[3] = 0.25 * (1 - xi) * (1 + eta)
		dnx[0] = -0.25 * (1 - eta) / wx
		dnx[1] = 0.25 * (1 - eta) / wx
		dnx[2] = 0.25 * (1 + eta) / wx
		dnx[3] = -0.25 * (1 + eta) / wx
		dny[0] = -0.25 * (1 - xi) / wy
		dny[1] = -0.25 * (1 + xi) / wy
		dny[2] = 0.25 * (1 + xi) / wy
		dny[3] = 0.25 * (1 - xi) / wy
		return
	}

	jac := wx * wy
	for _, xi := range pts {
		for _, eta := range pts {
			n, dnx, dny := shape(xi, eta)
			for a := 0; a < 4; a++ {
				for b := 0; b < 4; b++ {
					mass[a][b] += n[a] * n[b] * jac
					cx[a][b] += 0.5 * n[a] * dnx[b] * jac
					cy[a][b] += 0.5 * n[a] * dny[b] * jac
				}
			}
		}
	}
	return
}
