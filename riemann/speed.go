// Package riemann computes an upper bound on the maximum signal speed of
// the 1D Riemann problem between two states along a given direction, the
// quantity the kernel's first pass needs to build d_ij = |c_ij| * lambda_max.
//
// Grounded on Euler1D.RoeFlux (gocfd/model_problems/Euler1D/euler.go): that
// function builds a Roe average of the two states and applies a Harten
// entropy fix to the acoustic eigenvalues to avoid a vanishing wave speed
// at a sonic point. MaxSignalSpeed reuses the entropy-fix construction (it
// forms no Roe average), and rather than evaluating a flux it solves a
// two-rarefaction approximation for the star-region pressure and reports
// the resulting outer wave speeds as an upper bound, per spec.md §4.D.
package riemann

import (
	"math"

	"github.com/notargets/idpfem/euler"
)

// entropyFixEpsilon mirrors Euler1D.RoeFlux's Harten entropy-fix threshold.
const entropyFixEpsilon = 0.1

// MaxSignalSpeed returns an upper bound on the maximum wave speed of the
// Riemann problem between UL and UR along unit normal n.
func MaxSignalSpeed(sys *euler.System, UL, UR, n []float64) float64 {
	rhoL, rhoR := sys.Density(UL), sys.Density(UR)
	pL, pR := sys.Pressure(UL), sys.Pressure(UR)
	cL, cR := sys.SoundSpeed(UL), sys.SoundSpeed(UR)
	vnL := dot(sys.Velocity(UL), n)
	vnR := dot(sys.Velocity(UR), n)

	pStar := twoRarefactionPressure(sys.Gamma, rhoL, pL, cL, vnL, rhoR, pR, cR, vnR)

	lambdaL := waveSpeed(sys.Gamma, pL, cL, vnL, pStar, -1)
	lambdaR := waveSpeed(sys.Gamma, pR, cR, vnR, pStar, +1)

	// Harten entropy fix: widen a near-zero eigenvalue the way
	// Euler1D.RoeFlux's phi() correction does, so a sonic-point wave pair
	// never collapses the bound below a safe floor.
	lambdaL = hartenFix(lambdaL, entropyFixEpsilon*(cL+cR))
	lambdaR = hartenFix(lambdaR, entropyFixEpsilon*(cL+cR))

	return math.Max(math.Abs(lambdaL), math.Abs(lambdaR))
}

// twoRarefactionPressure estimates the star-region pressure with the
// classic ideal-gas two-rarefaction closed form, which is exact when both
// waves are rarefactions and over-estimates the star pressure otherwise.
// The same formula (gamma only, no covolume term) is applied for a nonzero
// covolume.
func twoRarefactionPressure(gamma, rhoL, pL, cL, vnL, rhoR, pR, cR, vnR float64) float64 {
	z := (gamma - 1) / (2 * gamma)
	num := cL + cR - 0.5*(gamma-1)*(vnR-vnL)
	den := cL/math.Pow(pL, z) + cR/math.Pow(pR, z)
	if den <= 0 {
		return math.Max(pL, pR)
	}
	pStar := math.Pow(num/den, 1/z)
	if pStar < 0 || math.IsNaN(pStar) {
		pStar = math.Max(pL, pR)
	}
	return pStar
}

// waveSpeed returns the outer characteristic speed on one side of the
// contact: the acoustic speed itself if the wave is a rarefaction
// (pStar<=p), or the shock speed from the Rankine-Hugoniot relation if it
// is a shock (pStar>p). side is -1 for the left wave, +1 for the right.
func waveSpeed(gamma, p, c, vn, pStar float64, side float64) float64 {
	if pStar <= p {
		return vn + side*c
	}
	q := math.Sqrt(1 + (gamma+1)/(2*gamma)*(pStar/p-1))
	return vn + side*c*q
}

func hartenFix(lambda, delta float64) float64 {
	if math.Abs(lambda) >= delta || delta <= 0 {
		return lambda
	}
	return (lambda*lambda + delta*delta) / (2 * delta)
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
