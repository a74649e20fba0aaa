package stencilsimd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildLineGraph connects a 1D chain of n DOFs (i <-> i+1), a minimal
// stencil adequate for exercising lane padding and the transpose map.
func buildLineGraph(n int) *Builder {
	b := NewBuilder(n)
	for i := 0; i < n-1; i++ {
		b.Connect(i, i+1)
	}
	return b
}

func TestPatternRowLengthPadding(t *testing.T) {
	b := buildLineGraph(12)
	p := b.Build(8) // nInternal=8 -> 2 lane groups, scalar tail of 4
	assert.Equal(t, 2, p.NGroups())
	for g := 0; g < p.NGroups(); g++ {
		assert.GreaterOrEqual(t, p.RowLengthLane(g), 2)
	}
}

func TestPatternTransposeSymmetricStorage(t *testing.T) {
	b := buildLineGraph(12)
	p := b.Build(8)
	m := NewMatrix(p)

	// write c_ij = i - j (antisymmetric-like pattern), read back via transpose.
	for g := 0; g < p.NGroups(); g++ {
		for k := 0; k < p.RowLengthLane(g); k++ {
			for l := 0; l < LaneWidth; l++ {
				i := g*LaneWidth + l
				j := p.ColumnLane(g, k, l)
				m.WriteEntryLane(g, k, l, float64(i-j))
			}
		}
	}
	for i := 0; i < len(p.rowLength); i++ {
		for k := 0; k < p.RowLengthScalar(i); k++ {
			row := p.NInternal + i
			j := p.ColumnScalar(i, k)
			m.WriteEntryScalar(i, k, float64(row-j))
		}
	}

	for g := 0; g < p.NGroups(); g++ {
		for k := 0; k < p.RowLengthLane(g); k++ {
			for l := 0; l < LaneWidth; l++ {
				i := g*LaneWidth + l
				j := p.ColumnLane(g, k, l)
				if i == j {
					continue
				}
				got := m.GetTransposedEntryLane(g, k, l)
				assert.Equal(t, float64(j-i), got)
			}
		}
	}
}

func TestRowSumLaneMatchesManualSum(t *testing.T) {
	b := buildLineGraph(8)
	p := b.Build(8)
	m := NewMatrix(p)
	for g := 0; g < p.NGroups(); g++ {
		for k := 0; k < p.RowLengthLane(g); k++ {
			row := m.GetTensorLane(g, k)
			for l := range row {
				row[l] = 1.0
			}
		}
	}
	sums := m.RowSumLane(0)
	for l := 0; l < LaneWidth; l++ {
		assert.Equal(t, float64(p.RowLengthLane(0)), sums[l])
	}
}
