package cmd

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/idpfem/config"
)

var (
	cfgFile string
	v       = viper.New()
)

// RootCmd is the idpfem root command, grounded on gocfd/cmd/1D.go's
// cobra.Command structure (the teacher's own main.go never wires its cmd
// package's cobra commands into main() — main.go there uses the stdlib
// flag package instead — so RootCmd/main.go here give that half-built
// cobra plumbing a real entry point rather than leaving it unreachable).
var RootCmd = &cobra.Command{
	Use:   "idpfem",
	Short: "invariant-domain-preserving finite-element hyperbolic solver",
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file")
	RootCmd.PersistentFlags().Float64("cfl", 0, "override the CFL number")
	RootCmd.PersistentFlags().Float64("final-time", 0, "override the simulation end time")
	RootCmd.PersistentFlags().Int("ndofs", 0, "override the number of DOFs")
	RootCmd.PersistentFlags().Int("nranks", 0, "override the config's rank count (run always uses one rank)")
	RootCmd.PersistentFlags().Bool("profile", false, "wrap the run with pprof CPU profiling")
	RootCmd.PersistentFlags().Bool("trace-halo", false, "set the config's TraceHalo field (run does not read it)")
	RootCmd.PersistentFlags().Bool("perf-counters", false, "sample perf counters once around the whole run")

	v.BindPFlag("cfl", RootCmd.PersistentFlags().Lookup("cfl"))
	v.BindPFlag("final-time", RootCmd.PersistentFlags().Lookup("final-time"))
	v.BindPFlag("ndofs", RootCmd.PersistentFlags().Lookup("ndofs"))
	v.BindPFlag("nranks", RootCmd.PersistentFlags().Lookup("nranks"))
	v.BindPFlag("profile", RootCmd.PersistentFlags().Lookup("profile"))
	v.BindPFlag("trace-halo", RootCmd.PersistentFlags().Lookup("trace-halo"))
	v.BindPFlag("perf-counters", RootCmd.PersistentFlags().Lookup("perf-counters"))

	RootCmd.AddCommand(runCmd)
}

// Execute runs the command tree, grounded on cobra-cli's scaffolded
// Execute() idiom.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective Config for a run: Defaults(),
// layered with the --config file if given, layered with any explicitly
// passed flags.
func loadConfig(scenario string) (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}
	if scenario != "" {
		cfg.Scenario = scenario
	}
	cfg = config.OverrideFromFlags(cfg, v)
	return cfg, nil
}

// maybeProfile wraps fn with pkg/profile's CPU profiler when cfg.Profile
// is set, grounded on gocfd/main.go's own (unused-by-default) profiling
// flag plumbing.
func maybeProfile(cfg config.Config, fn func() error) error {
	if !cfg.Profile {
		return fn()
	}
	stop := profile.Start(profile.CPUProfile)
	defer stop.Stop()
	return fn()
}
