package quantities

import (
	"bytes"
	"testing"

	"github.com/notargets/idpfem/euler"
	"github.com/stretchr/testify/assert"
)

func TestCollectAggregatesMassAndDensityRange(t *testing.T) {
	sys := euler.NewIdealGas(1, 1.4)
	U := [][]float64{{1.0, 0, 2.5}, {0.5, 0, 1.2}}
	r := Collect(sys, U, 3, 0.1, 0.01, 0, 0)
	assert.InDelta(t, 1.5, r.TotalMass, 1e-12)
	assert.InDelta(t, 0.5, r.MinDensity, 1e-12)
	assert.InDelta(t, 1.0, r.MaxDensity, 1e-12)
}

func TestLoggerRespectsCadence(t *testing.T) {
	var buf bytes.Buffer
	l := &Logger{Out: &buf, Cadence: 10}
	l.Report(BulkReport{Step: 3})
	assert.Equal(t, 0, buf.Len())
	l.Report(BulkReport{Step: 10})
	assert.Greater(t, buf.Len(), 0)
}
