// Package limiter implements the convex limiter of spec.md §4.F: per-DOF
// admissibility bounds accumulated over a stencil, a relaxation that
// widens those bounds by a mesh-size-dependent amount, and a bracketed
// Newton solve for the largest limiting coefficient l_ij in [0,1] that
// keeps the corrected state inside the bounds.
//
// Bounds.Reset/Accumulate/ApplyRelaxation are grounded line-for-line on
// original_source/source/euler_aeos/limiter.h's Limiter::reset/accumulate/
// apply_relaxation.
package limiter

import (
	"math"

	"github.com/notargets/idpfem/euler"
)

// RecomputeEdgeEntropy selects which of the two variants
// original_source/source/euler_aeos/limiter.h shows in Accumulate's
// comments is active: true recomputes s_j from U_j on every edge (the path
// the source's live code takes), false reuses a
// precomputed per-DOF entropy value (the path its comment shows
// commented-out as "not correct" but kept for benchmarking). Resolved in
// DESIGN.md's Open Questions section in favor of true.
var RecomputeEdgeEntropy = true

// float64Epsilon mirrors std::numeric_limits<double>::epsilon(), used to
// keep ApplyRelaxation's rho_relaxation ratio from dividing by zero on a
// DOF whose stencil carries a zero geometry weight.
const float64Epsilon = 2.220446049250313e-16

// Bounds holds the four admissibility bounds accumulated over DOF i's
// stencil: density min/max, specific-entropy min, and a minimum effective
// adiabatic index (Reset sets it to the system's constant Gamma, and
// ApplyRelaxation uses it in the covolume cap on RhoMax). The
// three unexported fields accumulate the geometry-weighted relaxation
// terms ApplyRelaxation needs and have no meaning once it has consumed
// them.
type Bounds struct {
	RhoMin, RhoMax float64
	SMin           float64
	GammaMin       float64

	rhoRelaxNumerator   float64
	rhoRelaxDenominator float64
	sInterpMax          float64
}

// Reset seeds the bounds from DOF i's own state, the starting point before
// folding in neighbor bar states.
func (b *Bounds) Reset(sys *euler.System, Ui []float64) {
	rho := sys.Density(Ui)
	b.RhoMin, b.RhoMax = rho, rho
	b.SMin = sys.SurrogateSpecificEntropy(Ui)
	b.GammaMin = sys.Gamma
	b.rhoRelaxNumerator = 0
	b.rhoRelaxDenominator = 0
	b.sInterpMax = 0
}

// Accumulate folds in edge (i,j)'s bar state barUij and its geometry
// weight betaIJ: widens RhoMin/RhoMax from the bar state's density,
// tightens SMin from both the bar state's and neighbor j's entropy, and
// accumulates the geometry-weighted density average and interpolated
// entropy ApplyRelaxation needs. sJPrecomputed is used only when
// RecomputeEdgeEntropy is false.
func (b *Bounds) Accumulate(sys *euler.System, Ui, Uj, barUij []float64, sJPrecomputed, betaIJ float64) {
	rhoBar := sys.Density(barUij)
	if rhoBar < b.RhoMin {
		b.RhoMin = rhoBar
	}
	if rhoBar > b.RhoMax {
		b.RhoMax = rhoBar
	}

	var sJ float64
	if RecomputeEdgeEntropy {
		sJ = sys.SurrogateSpecificEntropy(Uj)
	} else {
		sJ = sJPrecomputed
	}
	if sJ < b.SMin {
		b.SMin = sJ
	}
	if sBar := sys.SurrogateSpecificEntropy(barUij); sBar < b.SMin {
		b.SMin = sBar
	}

	b.rhoRelaxNumerator += betaIJ * (sys.Density(Ui) + sys.Density(Uj))
	b.rhoRelaxDenominator += betaIJ

	interp := make([]float64, len(Ui))
	for c := range interp {
		interp[c] = 0.5 * (Ui[c] + Uj[c])
	}
	if sInterp := sys.SurrogateSpecificEntropy(interp); sInterp > b.sInterpMax {
		b.sInterpMax = sInterp
	}
}

// ApplyRelaxation widens the bounds by an amount proportional to
// hd_i^(3/2) (hd_i being the local cell measure, m_i/|Omega|), the
// standard order-of-accuracy-preserving relaxation
// original_source/source/euler_aeos/limiter.h's apply_relaxation performs
// with a default factor of 2.0, combined with the geometry-weighted
// rho_relaxation term Accumulate built up. covolumeB caps RhoMax below the
// covolume EOS's singular density.
func (b *Bounds) ApplyRelaxation(hdI, factor, covolumeB float64) {
	if factor <= 0 {
		factor = 2.0
	}
	// The kernel's stencil is always 1D, so r_i = (sqrt(hd_i))^3 = hd_i^1.5.
	r := math.Sqrt(math.Max(hdI, 0))
	r = r * r * r
	r *= factor

	rhoRelax := math.Abs(b.rhoRelaxNumerator) / (math.Abs(b.rhoRelaxDenominator) + float64Epsilon)

	b.RhoMin = math.Max((1-r)*b.RhoMin, b.RhoMin-rhoRelax)
	b.SMin = math.Max((1-r)*b.SMin, 2*b.SMin-b.sInterpMax)

	numerator := (b.GammaMin + 1) * b.RhoMax
	denominator := b.GammaMin - 1 + 2*covolumeB*b.RhoMax
	upperBound := b.RhoMax
	if denominator > 0 {
		upperBound = numerator / denominator
	}
	b.RhoMax = math.Min(upperBound, (1+r)*b.RhoMax)
}
