// Package partition provides DOF-indexed domain decomposition and a
// goroutine/channel transport standing in for MPI point-to-point and
// collective communication between ranks.
package partition

import "fmt"

// Map mirrors the bucket arithmetic of gocfd's utils.PartitionMap, but
// indexes degrees of freedom instead of elements: a global DOF range
// [0,N) is split into NRanks contiguous buckets, each owning one range.
// Map does not record ghost DOFs; halo index maps are passed separately
// (e.g. to field.Vector.Bind).
type Map struct {
	N       int // total number of global DOFs
	NRanks  int
	bucket  []int // size NRanks+1, bucket[r]..bucket[r+1) owned by rank r
}

// NewMap builds a Map by splitting N DOFs as evenly as possible across
// nRanks buckets, grounded on gocfd/utils.PartitionMap.Split1D.
func NewMap(n, nRanks int) *Map {
	if nRanks < 1 {
		nRanks = 1
	}
	bucket := Split1D(n, nRanks)
	return &Map{N: n, NRanks: nRanks, bucket: bucket}
}

// Split1D returns nRanks+1 bucket boundaries covering [0,n), distributing
// the remainder across the first buckets one at a time.
func Split1D(n, nRanks int) []int {
	bucket := make([]int, nRanks+1)
	base := n / nRanks
	rem := n % nRanks
	acc := 0
	for r := 0; r < nRanks; r++ {
		sz := base
		if r < rem {
			sz++
		}
		bucket[r] = acc
		acc += sz
	}
	bucket[nRanks] = acc
	return bucket
}

// GetBucket returns the rank owning global DOF k.
func (m *Map) GetBucket(k int) int {
	for r := 0; r < m.NRanks; r++ {
		if k >= m.bucket[r] && k < m.bucket[r+1] {
			return r
		}
	}
	panic(fmt.Sprintf("partition: global dof %d out of range [0,%d)", k, m.N))
}

// GetBucketRange returns the [lo,hi) global DOF range owned by rank r.
func (m *Map) GetBucketRange(r int) (lo, hi int) {
	return m.bucket[r], m.bucket[r+1]
}

// GetLocalK converts a global DOF index into a rank-local index.
func (m *Map) GetLocalK(k int) int {
	r := m.GetBucket(k)
	return k - m.bucket[r]
}

// GetGlobalK converts a rank-local index on rank r into a global DOF index.
func (m *Map) GetGlobalK(r, local int) int {
	return m.bucket[r] + local
}

// GetBucketDimension returns the number of DOFs owned by rank r.
func (m *Map) GetBucketDimension(r int) int {
	return m.bucket[r+1] - m.bucket[r]
}
