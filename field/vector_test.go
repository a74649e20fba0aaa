package field

import (
	"testing"

	"github.com/notargets/idpfem/partition"
	"github.com/stretchr/testify/assert"
)

func TestGetWriteTensorRoundTrip(t *testing.T) {
	v := NewVector(5, 3)
	v.WriteTensor(2, []float64{1, 2, 3})
	assert.Equal(t, []float64{1, 2, 3}, v.GetTensor(2))
}

func TestGhostExchangeRoundTrip(t *testing.T) {
	pm := partition.NewMap(8, 2)
	cl := partition.NewCluster(pm, false)

	v0 := NewVector(4, 2)
	v1 := NewVector(4, 2)
	v0.Bind(cl.Rank(0), map[int][]int{1: {3}}, map[int][]int{1: {0}})
	v1.Bind(cl.Rank(1), map[int][]int{0: {0}}, map[int][]int{0: {3}})

	v0.WriteTensor(3, []float64{9, 9})
	v1.WriteTensor(0, []float64{5, 5})

	v0.UpdateGhostValuesStart()
	v1.UpdateGhostValuesStart()
	v0.UpdateGhostValuesFinish()
	v1.UpdateGhostValuesFinish()

	assert.Equal(t, []float64{5, 5}, v0.GetTensor(0))
	assert.Equal(t, []float64{9, 9}, v1.GetTensor(3))
}
