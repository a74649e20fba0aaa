package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlphaZeroForCancelingFluxesInSmoothRegion(t *testing.T) {
	var a Accumulator
	a.Reset(1.0)
	a.Add(1.0, 1.0)
	a.Add(-1.0, 1.0)
	assert.Equal(t, 0.0, a.Alpha(1.0, 1.0, 1e-8))
}

func TestAlphaNearOneAtDiscontinuity(t *testing.T) {
	var a Accumulator
	a.Reset(1.0)
	a.Add(5.0, 1.0)
	a.Add(5.0, 1.0)
	assert.InDelta(t, 1.0, a.Alpha(1.0, 1.0, 1e-8), 1e-9)
}

func TestAlphaClampedToUnitInterval(t *testing.T) {
	var a Accumulator
	a.Reset(1.0)
	a.Add(100.0, 1.0)
	v := a.Alpha(1.0, 1.0, 1e-8)
	assert.LessOrEqual(t, v, 1.0)
	assert.GreaterOrEqual(t, v, 0.0)
}
