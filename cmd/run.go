package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/notargets/idpfem/config"
	"github.com/notargets/idpfem/euler"
	"github.com/notargets/idpfem/hyperbolicmodule"
	"github.com/notargets/idpfem/offline"
	"github.com/notargets/idpfem/quantities"
	"github.com/notargets/idpfem/timeintegrator"
)

// runCmd dispatches to one of the named scenarios, grounded on
// gocfd/cmd/1D.go's OneDCmd/Run1D dispatcher over a ModelType1D enum,
// generalized here to a scenario string ("sod", "dmr", "wave") since the
// kernel is scenario-agnostic once its boundary/initial-state callbacks
// are supplied.
var runCmd = &cobra.Command{
	Use:   "run [sod|dmr|wave]",
	Short: "run one of the built-in scenarios to completion",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		cfg, err := loadConfig(args[0])
		if err != nil {
			return err
		}
		cfg.Print()
		return maybeProfile(cfg, func() error { return runScenario(cfg) })
	},
}

func runScenario(cfg config.Config) error {
	sys := euler.NewIdealGas(1, cfg.Gamma)
	sys.Covolume = cfg.Covolume

	nInternal := cfg.NDOFs - cfg.NDOFs%4
	assembly := offline.AssembleLine(cfg.NDOFs, cfg.Length, nInternal)

	mod := hyperbolicmodule.NewModule(sys, assembly)
	mod.Cfl = cfg.Cfl
	mod.LimiterIter = cfg.LimiterIter
	mod.LimiterNewtonTol = cfg.LimiterNewtonTol
	mod.LimiterNewtonMaxIter = cfg.LimiterNewtonMaxIter
	mod.CflWithBoundaryDofs = cfg.CflWithBoundaryDofs
	if cfg.RestartPolicy == "raise" {
		mod.Strategy = hyperbolicmodule.RaiseException
	}

	integrator := &timeintegrator.Integrator{Module: mod, Scheme: timeintegrator.SSPRK33, Recovery: timeintegrator.BangBangControl}

	U := initialState(cfg.Scenario, sys, cfg.NDOFs)

	logger := &quantities.Logger{Out: os.Stdout, Cadence: cfg.OutputCadence}

	var sampler *perfSampler
	if cfg.PerfCounters {
		sampler = newPerfSampler()
		sampler.start()
	}

	t := 0.0
	step := 0
	for t < cfg.FinalTime {
		dt, err := integrator.Step(U, nil)
		if err != nil {
			if _, ok := err.(*hyperbolicmodule.RestartError); !ok {
				return err
			}
		}
		t += dt
		step++
		logger.Report(quantities.Collect(sys, U, step, t, dt, mod.NRestarts, mod.NWarnings))
		if dt <= 0 {
			return fmt.Errorf("cmd: time step collapsed to zero at step %d", step)
		}
	}

	if sampler != nil {
		sampler.reportAndStop(step)
	}
	return nil
}

// initialState builds the scenario's initial conserved state, grounded on
// Euler1D.InitializeSOD/InitializeFS's role of seeding a FieldState before
// time stepping begins.
func initialState(scenario string, sys *euler.System, n int) [][]float64 {
	U := make([][]float64, n)
	switch scenario {
	case "dmr":
		for i := range U {
			if i < n/4 {
				U[i] = primitiveToConserved(sys, 8.0, 8.25, 116.5)
			} else {
				U[i] = primitiveToConserved(sys, 1.4, 0, 1.0)
			}
		}
	case "wave":
		for i := range U {
			x := float64(i) / float64(n-1)
			rho := 1.0 + 0.2*math.Sin(2*math.Pi*x)
			U[i] = primitiveToConserved(sys, rho, 0, 1.0)
		}
	default: // "sod"
		for i := range U {
			if i < n/2 {
				U[i] = primitiveToConserved(sys, 1.0, 0, 1.0)
			} else {
				U[i] = primitiveToConserved(sys, 0.125, 0, 0.1)
			}
		}
	}
	return U
}

func primitiveToConserved(sys *euler.System, rho, u, p float64) []float64 {
	e := p / ((sys.Gamma - 1) * rho)
	m := rho * u
	E := rho*e + 0.5*rho*u*u
	return []float64{rho, m, E}
}
