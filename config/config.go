// Package config loads the solver's parameters from a YAML file with
// cobra-flag overrides, grounded on gocfd/InputParameters'
// InputParameters2D (a flat yaml-tagged struct parsed with
// github.com/ghodss/yaml) and gocfd/cmd/1D.go's Defaults-table-plus-
// flag-override pattern.
package config

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the flattened set of parameters a run needs, spanning the
// domain EOS/mesh choices and the kernel's numerical tolerances (spec.md
// §6's enumerated options, defaults copied from
// original_source/source/hyperbolic_module.template.h's constructor).
type Config struct {
	Title       string  `yaml:"Title"`
	Scenario    string  `yaml:"Scenario"` // "sod", "dmr", "wave"
	Dim         int     `yaml:"Dim"`
	Gamma       float64 `yaml:"Gamma"`
	Covolume    float64 `yaml:"Covolume"`
	NDOFs       int     `yaml:"NDOFs"`
	Length      float64 `yaml:"Length"`
	FinalTime   float64 `yaml:"FinalTime"`
	NRanks      int     `yaml:"NRanks"`
	TraceHalo   bool    `yaml:"TraceHalo"`

	Cfl                  float64 `yaml:"CFL"`
	LimiterIter          int     `yaml:"LimiterIterations"`
	LimiterNewtonTol     float64 `yaml:"LimiterNewtonTolerance"`
	LimiterNewtonMaxIter int     `yaml:"LimiterNewtonMaxIterations"`
	CflWithBoundaryDofs  bool    `yaml:"CFLWithBoundaryDOFs"`

	OutputCadence int    `yaml:"OutputCadence"`
	Profile       bool   `yaml:"Profile"`
	PerfCounters  bool   `yaml:"PerfCounters"`
	RestartPolicy string `yaml:"RestartPolicy"` // "warn" or "raise"
}

// Defaults returns a Config populated with the source's documented
// defaults (cfl=0.2, limiter_iter=2, limiter_newton_tolerance=1e-10,
// limiter_newton_max_iter=2, cfl_with_boundary_dofs=false).
func Defaults() Config {
	return Config{
		Title:                "idpfem run",
		Scenario:             "sod",
		Dim:                  1,
		Gamma:                1.4,
		Covolume:             0,
		NDOFs:                256,
		Length:               1.0,
		FinalTime:            0.2,
		NRanks:               1,
		Cfl:                  0.2,
		LimiterIter:          2,
		LimiterNewtonTol:     1e-10,
		LimiterNewtonMaxIter: 2,
		CflWithBoundaryDofs:  false,
		OutputCadence:        10,
		RestartPolicy:        "warn",
	}
}

// Load reads a YAML config file, falling back to Defaults() for any field
// left unset in the file (parsed into the defaults struct in place, the
// way gocfd/InputParameters.Parse unmarshals onto an existing struct).
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("config: expanding path %q: %w", path, err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %q: %w", expanded, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %q: %w", expanded, err)
	}
	return cfg, nil
}

// OverrideFromFlags layers cobra flag values bound into v on top of cfg,
// one field at a time, so that an explicitly-passed command-line flag wins
// over the YAML file's value but an unset flag leaves the YAML value (or
// Defaults()) alone. Grounded on gocfd/cmd/1D.go's flag-overrides-
// defaults-table pattern, generalized to route through viper's bound-flag
// registry instead of checking each *cobra.Command flag by hand.
func OverrideFromFlags(cfg Config, v *viper.Viper) Config {
	if v.IsSet("cfl") {
		cfg.Cfl = v.GetFloat64("cfl")
	}
	if v.IsSet("final-time") {
		cfg.FinalTime = v.GetFloat64("final-time")
	}
	if v.IsSet("ndofs") {
		cfg.NDOFs = v.GetInt("ndofs")
	}
	if v.IsSet("nranks") {
		cfg.NRanks = v.GetInt("nranks")
	}
	if v.IsSet("scenario") {
		cfg.Scenario = v.GetString("scenario")
	}
	if v.IsSet("profile") {
		cfg.Profile = v.GetBool("profile")
	}
	if v.IsSet("trace-halo") {
		cfg.TraceHalo = v.GetBool("trace-halo")
	}
	if v.IsSet("perf-counters") {
		cfg.PerfCounters = v.GetBool("perf-counters")
	}
	return cfg
}

// Print writes a subset of the config's fields in a fixed order, grounded on
// InputParameters2D.Print's register.
func (c Config) Print() {
	fmt.Printf("%q\t\t= Title\n", c.Title)
	fmt.Printf("%q\t\t= Scenario\n", c.Scenario)
	fmt.Printf("%8.5f\t\t= CFL\n", c.Cfl)
	fmt.Printf("%8.5f\t\t= FinalTime\n", c.FinalTime)
	fmt.Printf("%d\t\t\t= NDOFs\n", c.NDOFs)
	fmt.Printf("%d\t\t\t= NRanks\n", c.NRanks)
	fmt.Printf("%d\t\t\t= LimiterIterations\n", c.LimiterIter)
	fmt.Printf("%q\t\t= RestartPolicy\n", c.RestartPolicy)
}
