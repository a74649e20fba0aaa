package partition

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit1DCoversRange(t *testing.T) {
	pm := NewMap(17, 4)
	total := 0
	for r := 0; r < 4; r++ {
		lo, hi := pm.GetBucketRange(r)
		total += hi - lo
		assert.LessOrEqual(t, hi-lo, 5)
	}
	assert.Equal(t, 17, total)
}

func TestGetBucketRoundTrip(t *testing.T) {
	pm := NewMap(100, 7)
	for k := 0; k < 100; k++ {
		r := pm.GetBucket(k)
		local := pm.GetLocalK(k)
		assert.Equal(t, k, pm.GetGlobalK(r, local))
	}
}

func TestRankPostReceive(t *testing.T) {
	pm := NewMap(10, 2)
	c := NewCluster(pm, true)
	r0 := c.Rank(0)
	r1 := c.Rank(1)

	go r0.Post(1, []float64{1, 2, 3})
	msg := r1.Receive(0)
	assert.Equal(t, []float64{1, 2, 3}, msg.Data)
	assert.Equal(t, 0, msg.From)
	assert.NotEqual(t, msg.Trace.String(), "")
}

func TestAllreduceMinOr(t *testing.T) {
	assert.Equal(t, 0.5, AllreduceMin([]float64{3, 1.2, 0.5, 9}))
	assert.True(t, AllreduceOr([]bool{false, false, true}))
	assert.False(t, AllreduceOr([]bool{false, false}))
}
