package limiter

import (
	"math"

	"github.com/notargets/idpfem/euler"
)

// Limit solves for the largest coefficient l in [0,1] such that
// Ui + l*Pij stays within bounds, where Pij is the high-order correction
// vector for this edge. Density is affine in l so its bound is solved in
// closed form; the specific-entropy bound is nonlinear and is solved with
// a bracketed secant iteration that falls back to bisection whenever the
// secant point leaves the bracket, grounded on spec.md §4.F's algorithm
// description and the per-lane gather/scatter idiom of
// original_source/grendel/helper.h. restart reports true when even l=0
// fails to admit a valid state, signalling the caller to request a
// smaller time step (spec.md §4.I).
func Limit(sys *euler.System, bounds Bounds, Ui, Pij []float64, maxIter int, newtonTol float64) (l float64, restart bool) {
	if maxIter <= 0 {
		maxIter = 2
	}
	if newtonTol <= 0 {
		newtonTol = 1e-10
	}

	l = 1.0
	rhoI := sys.Density(Ui)
	rhoP := Pij[0]

	switch {
	case rhoP < 0:
		lLo := (bounds.RhoMin - rhoI) / rhoP
		if lLo < l {
			l = math.Max(0, lLo)
		}
	case rhoP > 0:
		lHi := (bounds.RhoMax - rhoI) / rhoP
		if lHi < l {
			l = math.Max(0, lHi)
		}
	}

	entropyResidual := func(ll float64) float64 {
		Ul := addScaled(Ui, Pij, ll)
		return sys.SurrogateSpecificEntropy(Ul) - bounds.SMin
	}

	if entropyResidual(l) >= 0 {
		return l, false
	}

	lo, hi := 0.0, l
	glo, ghi := entropyResidual(lo), entropyResidual(hi)
	if glo < 0 {
		return 0, true
	}

	mid := lo
	for it := 0; it < maxIter; it++ {
		mid = 0.5 * (lo + hi)
		if ghi != glo {
			secant := lo - glo*(hi-lo)/(ghi-glo)
			if secant > lo && secant < hi {
				mid = secant
			}
		}
		gm := entropyResidual(mid)
		if math.Abs(gm) < newtonTol {
			return mid, false
		}
		if gm < 0 {
			hi, ghi = mid, gm
		} else {
			lo, glo = mid, gm
		}
	}
	return lo, false
}

func addScaled(U, P []float64, l float64) []float64 {
	out := make([]float64, len(U))
	for i := range U {
		out[i] = U[i] + l*P[i]
	}
	return out
}
