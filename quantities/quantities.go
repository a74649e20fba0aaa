// Package quantities reports periodic bulk diagnostics about the running
// simulation, grounded on original_source/source/quantities.h's purpose
// (periodic bulk/point postprocessing) and on Euler1D.(*EulerDFR).Run's
// fmt.Printf progress-line register (teacher), generalized from a 1D
// scalar-field print to a NComp-wide bulk report.
package quantities

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/idpfem/euler"
)

// BulkReport holds one sampling's aggregate quantities over the owned DOF
// range: total mass, total momentum magnitude, total energy, min/max
// density and the step's restart/warning counters.
type BulkReport struct {
	Step         int
	Time         float64
	Dt           float64
	TotalMass    float64
	TotalEnergy  float64
	MinDensity   float64
	MaxDensity   float64
	NRestarts    int
	NWarnings    int
}

// Collect builds a BulkReport from the current state vector.
func Collect(sys *euler.System, U [][]float64, step int, t, dt float64, nRestarts, nWarnings int) BulkReport {
	r := BulkReport{Step: step, Time: t, Dt: dt, NRestarts: nRestarts, NWarnings: nWarnings}
	r.MinDensity = math.MaxFloat64
	for _, u := range U {
		rho := sys.Density(u)
		r.TotalMass += rho
		r.TotalEnergy += sys.TotalEnergy(u)
		if rho < r.MinDensity {
			r.MinDensity = rho
		}
		if rho > r.MaxDensity {
			r.MaxDensity = rho
		}
	}
	return r
}

// Logger writes BulkReport lines to an io.Writer at a fixed cadence,
// grounded on Euler1D.(*EulerDFR).Run's periodic fmt.Printf register.
type Logger struct {
	Out     io.Writer
	Cadence int
}

// Report prints r if r.Step is a multiple of the logger's cadence (every
// step when Cadence<=0).
func (l *Logger) Report(r BulkReport) {
	if l.Cadence > 0 && r.Step%l.Cadence != 0 {
		return
	}
	fmt.Fprintf(l.Out, "step %6d  t=%10.6f  dt=%10.6e  mass=%12.8f  energy=%12.8f  rho=[%8.5f,%8.5f]  restarts=%d warnings=%d\n",
		r.Step, r.Time, r.Dt, r.TotalMass, r.TotalEnergy, r.MinDensity, r.MaxDensity, r.NRestarts, r.NWarnings)
}
