package offline

import (
	"testing"

	"github.com/notargets/idpfem/stencilsimd"
	"github.com/stretchr/testify/assert"
)

func TestAssembleLineRowSumZeroOffDiagonal(t *testing.T) {
	a := AssembleLine(16, 1.0, 8)
	p := a.Pattern
	for i := 0; i < p.NOwned-p.NInternal; i++ {
		sum := a.Cij.RowSumScalar(i)
		assert.InDelta(t, 0, sum, 1e-9)
	}
	for g := 0; g < p.NGroups(); g++ {
		sums := a.Cij.RowSumLane(g)
		for l := 0; l < stencilsimd.LaneWidth; l++ {
			assert.InDelta(t, 0, sums[l], 1e-9)
		}
	}
}

func TestAssembleLineLumpedMassSumsToOmega(t *testing.T) {
	a := AssembleLine(21, 2.0, 16)
	total := 0.0
	for _, m := range a.MassLumped {
		total += m
	}
	assert.InDelta(t, a.OmegaMeasure, total, 1e-9)
}

func TestAssembleGrid2DLumpedMassSumsToArea(t *testing.T) {
	a := AssembleGrid2D(9, 9, 1.0, 1.0, 64)
	total := 0.0
	for _, m := range a.MassLumped {
		total += m
	}
	assert.InDelta(t, a.OmegaMeasure, total, 1e-6)
}
