// Package euler implements the compressible Euler equations with a
// covolume (Noble-Abel) equation of state as the HyperbolicSystem the
// kernel in package hyperbolicmodule is built against.
//
// Grounded on Euler1D.FieldState.Update (gocfd/model_problems/Euler1D/euler.go):
// that function computes velocity, pressure, sound speed, enthalpy from a
// 1D conserved state via Apply2/Apply3 closures over utils.Matrix; System
// generalizes the same EOS algebra to a dim-dimensional packed state
// tuple and adds the covolume correction used by
// original_source/source/euler_aeos/limiter.h's eos_interpolation_b.
package euler

import "math"

// System is a dim-dimensional compressible Euler model with a covolume
// equation of state. Covolume=0 recovers the ideal-gas law.
type System struct {
	Dim      int
	Gamma    float64
	Covolume float64
}

// NewIdealGas builds a System with zero covolume (plain ideal gas), the
// default used by the Sod shock tube and double-Mach-reflection scenarios.
func NewIdealGas(dim int, gamma float64) *System {
	return &System{Dim: dim, Gamma: gamma, Covolume: 0}
}

// NComp returns the conserved-state width: density, dim momentum
// components, total energy.
func (s *System) NComp() int { return s.Dim + 2 }

// Density returns U[0].
func (s *System) Density(U []float64) float64 { return U[0] }

// Momentum returns U[1:1+Dim].
func (s *System) Momentum(U []float64) []float64 { return U[1 : 1+s.Dim] }

// TotalEnergy returns U[Dim+1].
func (s *System) TotalEnergy(U []float64) float64 { return U[s.Dim+1] }

// Velocity returns momentum/density component-wise.
func (s *System) Velocity(U []float64) []float64 {
	rho := s.Density(U)
	m := s.Momentum(U)
	v := make([]float64, s.Dim)
	for d := range v {
		v[d] = m[d] / rho
	}
	return v
}

func (s *System) kineticEnergy(U []float64) float64 {
	m := s.Momentum(U)
	rho := s.Density(U)
	sq := 0.0
	for _, mi := range m {
		sq += mi * mi
	}
	return 0.5 * sq / rho
}

// SpecificInternalEnergy returns e = (E - kinetic)/rho.
func (s *System) SpecificInternalEnergy(U []float64) float64 {
	rho := s.Density(U)
	return (s.TotalEnergy(U) - s.kineticEnergy(U)) / rho
}

// Pressure evaluates the covolume equation of state
// p = (gamma-1) * rho * e / (1 - b*rho).
func (s *System) Pressure(U []float64) float64 {
	rho := s.Density(U)
	e := s.SpecificInternalEnergy(U)
	denom := 1.0 - s.Covolume*rho
	return (s.Gamma - 1.0) * rho * e / denom
}

// SoundSpeed returns the local sound speed c = sqrt(gamma*p / (rho*(1-b*rho))).
func (s *System) SoundSpeed(U []float64) float64 {
	rho := s.Density(U)
	p := s.Pressure(U)
	denom := rho * (1.0 - s.Covolume*rho)
	return math.Sqrt(s.Gamma * p / denom)
}

// SurrogateSpecificEntropy returns the surrogate entropy s = p/rho^gamma
// used as the limiter's invariant-domain entropy bound, grounded on
// euler_aeos/limiter.h's specific_entropy() usage pattern.
func (s *System) SurrogateSpecificEntropy(U []float64) float64 {
	rho := s.Density(U)
	p := s.Pressure(U)
	return p / math.Pow(rho, s.Gamma)
}

// EOSInterpolationB returns the covolume constant b (the covolume EOS's
// pressure diverges at density 1/b), used to cap rho_max in the limiter's
// bound relaxation.
func (s *System) EOSInterpolationB() float64 { return s.Covolume }

// Flux returns F(U)*n, the normal flux through a unit vector n of length
// Dim: mass flux rho*(v.n), momentum flux (rho*v)(v.n) + p*n, energy flux
// (E+p)*(v.n).
func (s *System) Flux(U []float64, n []float64) []float64 {
	rho := s.Density(U)
	v := s.Velocity(U)
	p := s.Pressure(U)
	vn := dot(v, n)

	F := make([]float64, s.NComp())
	F[0] = rho * vn
	m := s.Momentum(U)
	for d := 0; d < s.Dim; d++ {
		F[1+d] = m[d]*vn + p*n[d]
	}
	F[s.Dim+1] = (s.TotalEnergy(U) + p) * vn
	return F
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// IsAdmissible reports whether U lies in the invariant domain: positive
// density, positive internal energy, non-negative surrogate entropy, and
// (for a nonzero covolume) density below the covolume singularity.
func (s *System) IsAdmissible(U []float64) bool {
	rho := s.Density(U)
	if rho <= 0 {
		return false
	}
	if s.Covolume > 0 && rho >= 1.0/s.Covolume {
		return false
	}
	if s.SpecificInternalEnergy(U) <= 0 {
		return false
	}
	return s.SurrogateSpecificEntropy(U) >= 0
}

// IndicatorValues holds the per-DOF quantities the smoothness indicator
// (package indicator) needs precomputed once per state vector, grounded on
// original_source/source/hyperbolic_module.template.h's
// indicator_precomputed_values_ allocation.
type IndicatorValues struct {
	Entropy float64
}

// PrecomputeIndicatorValues returns the per-DOF entropy surrogate used as
// the indicator's quantity of interest.
func (s *System) PrecomputeIndicatorValues(U []float64) IndicatorValues {
	return IndicatorValues{Entropy: s.SurrogateSpecificEntropy(U)}
}

// LimiterValues holds the per-DOF quantities the convex limiter (package
// limiter) needs precomputed once per state vector: pressure and flux,
// grounded on euler_aeos/limiter.h's limiter_precomputed_values_ usage
// (f_i, the per-DOF flux contribution needed by the bar-state formula).
type LimiterValues struct {
	Pressure float64
	Flux     []float64 // NComp x Dim flattened row-major: Flux[c*Dim+d]
}

// PrecomputeLimiterValues returns U's pressure and its full flux tensor
// (one flux vector per conserved component, contracted later against c_ij
// inside the limiter's accumulate step).
func (s *System) PrecomputeLimiterValues(U []float64) LimiterValues {
	p := s.Pressure(U)
	flux := make([]float64, s.NComp()*s.Dim)
	v := s.Velocity(U)
	m := s.Momentum(U)
	for d := 0; d < s.Dim; d++ {
		flux[0*s.Dim+d] = m[d]
		for c := 0; c < s.Dim; c++ {
			flux[(1+c)*s.Dim+d] = m[c] * v[d]
			if c == d {
				flux[(1+c)*s.Dim+d] += p
			}
		}
		flux[(s.Dim+1)*s.Dim+d] = (s.TotalEnergy(U) + p) * v[d]
	}
	return LimiterValues{Pressure: p, Flux: flux}
}
