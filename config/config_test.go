package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestDefaultsMatchSourceConstants(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 0.2, cfg.Cfl)
	assert.Equal(t, 2, cfg.LimiterIter)
	assert.Equal(t, 1e-10, cfg.LimiterNewtonTol)
	assert.Equal(t, 2, cfg.LimiterNewtonMaxIter)
	assert.False(t, cfg.CflWithBoundaryDofs)
}

func TestLoadWithEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	assert.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestOverrideFromFlagsOnlyTouchesSetFlags(t *testing.T) {
	cfg := Defaults()
	v := viper.New()
	v.Set("cfl", 0.5)
	cfg2 := OverrideFromFlags(cfg, v)
	assert.Equal(t, 0.5, cfg2.Cfl)
	assert.Equal(t, cfg.FinalTime, cfg2.FinalTime)
}
