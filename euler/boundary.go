package euler

// BoundaryRule names a boundary treatment applied to a DOF lying on a
// domain boundary face, grounded on Euler1D.BoundaryConditions' dispatch
// over boundary ids (inflow/outflow/reflecting) generalized to the five
// named rules a dim-dimensional solver needs.
type BoundaryRule int

const (
	DoNothing BoundaryRule = iota
	Slip
	NoSlip
	Dirichlet
	Dynamic
)

// BoundaryData carries the extra state a rule may need: a prescribed state
// for Dirichlet, or nothing for the others.
type BoundaryData struct {
	Prescribed []float64
}

// ApplyBoundaryConditions returns the boundary-adjusted state for U at a
// face with outward normal n, grounded on Euler1D.bFunc's characteristic
// inflow/outflow treatment (there implemented as a Lax-Friedrichs-style
// penalty against a freestream state; here reduced to the exact
// wall/prescribed conditions the kernel's pass 7 needs, since the
// approximate Riemann penalty is handled upstream by package riemann).
func (s *System) ApplyBoundaryConditions(U []float64, n []float64, rule BoundaryRule, data BoundaryData) []float64 {
	switch rule {
	case DoNothing:
		return U
	case Slip:
		return s.reflectNormalVelocity(U, n)
	case NoSlip:
		out := make([]float64, s.NComp())
		out[0] = s.Density(U)
		out[s.Dim+1] = s.TotalEnergy(U) - s.kineticEnergy(U)
		return out
	case Dirichlet:
		return data.Prescribed
	case Dynamic:
		// Dynamic boundaries are resolved by the caller (e.g. a
		// time-varying inflow profile); ApplyBoundaryConditions is a
		// pass-through here.
		return U
	default:
		return U
	}
}

// reflectNormalVelocity mirrors the momentum component along n, leaving
// density and total energy untouched (an inviscid slip wall).
func (s *System) reflectNormalVelocity(U []float64, n []float64) []float64 {
	out := make([]float64, s.NComp())
	copy(out, U)
	m := s.Momentum(U)
	mn := dot(m, n)
	for d := 0; d < s.Dim; d++ {
		out[1+d] = m[d] - 2*mn*n[d]
	}
	return out
}
