package stencilsimd

// Matrix is a single scalar-valued sparse matrix (e.g. c_ij's x-component,
// or d_ij) stored against a shared Pattern. Several Matrix values sharing
// one Pattern form the coupling tensor c_ij (one Matrix per spatial
// dimension) the way gocfd/utils/sparse_block.go's BlockSparse packs
// several logical blocks into one flat backing array.
type Matrix struct {
	Pattern *Pattern
	data    []float64
}

// NewMatrix allocates a Matrix over p, zero-initialized.
func NewMatrix(p *Pattern) *Matrix {
	return &Matrix{Pattern: p, data: make([]float64, p.laneDataSize()+p.scalarDataSize())}
}

func (m *Matrix) laneBase() int { return 0 }
func (m *Matrix) scalarBase() int { return m.Pattern.laneDataSize() }

// GetEntryLane reads the value at lane l, slot k of lane group g.
func (m *Matrix) GetEntryLane(g, k, l int) float64 {
	return m.data[m.laneBase()+m.Pattern.LaneFlatIndex(g, k, l)]
}

// WriteEntryLane writes the value at lane l, slot k of lane group g.
func (m *Matrix) WriteEntryLane(g, k, l int, v float64) {
	m.data[m.laneBase()+m.Pattern.LaneFlatIndex(g, k, l)] = v
}

// GetTensorLane reads the contiguous LaneWidth-wide unit-stride slice for
// slot k of lane group g, letting a kernel pass load all four lanes with
// one slice expression instead of four scalar reads.
func (m *Matrix) GetTensorLane(g, k int) []float64 {
	base := m.laneBase() + m.Pattern.LaneFlatIndex(g, k, 0)
	return m.data[base : base+LaneWidth]
}

// GetEntryScalar/WriteEntryScalar access the scalar tail's CSR storage.
func (m *Matrix) GetEntryScalar(i, k int) float64 {
	return m.data[m.scalarBase()+m.Pattern.ScalarFlatIndex(i, k)]
}

func (m *Matrix) WriteEntryScalar(i, k int, v float64) {
	m.data[m.scalarBase()+m.Pattern.ScalarFlatIndex(i, k)] = v
}

// GetTransposedEntryLane reads the value stored at the transpose of entry
// (lane l, slot k, group g), i.e. d_ji given (i,j) is that entry — needed
// by passes that must read both d_ij and d_ji (or b_ij/b_ji) without a
// second adjacency lookup.
func (m *Matrix) GetTransposedEntryLane(g, k, l int) float64 {
	flat := m.Pattern.TransposeLaneIndex(g, k, l)
	return m.valueAtFlat(flat)
}

func (m *Matrix) GetTransposedEntryScalar(i, k int) float64 {
	flat := m.Pattern.TransposeScalarIndex(i, k)
	return m.valueAtFlat(flat)
}

// valueAtFlat resolves a flat index produced by Pattern's lane/scalar
// addressing (which are disjoint ranges once offset by scalarBase) back
// into this Matrix's single backing array.
func (m *Matrix) valueAtFlat(flat int) float64 {
	if flat < m.Pattern.laneDataSize() {
		return m.data[m.laneBase()+flat]
	}
	return m.data[m.scalarBase()+(flat-m.Pattern.laneDataSize())]
}

// RowSumScalar returns sum_j entry(i,j) across a full scalar-tail row,
// diagonal included — used by the row-sum-zero test on c_ij.
func (m *Matrix) RowSumScalar(i int) float64 {
	s := 0.0
	for k := 0; k < m.Pattern.RowLengthScalar(i); k++ {
		s += m.GetEntryScalar(i, k)
	}
	return s
}

// ValueAt returns the stored entry (i,j) by scanning row i's column list,
// returning 0 if (i,j) is not a stored pair (no edge between i and j).
// The lookup is a linear scan over the row; hyperbolicmodule's bounds pass
// calls it once per stored edge.
func (m *Matrix) ValueAt(i, j int) float64 {
	p := m.Pattern
	if i < p.NInternal {
		g, l := i/LaneWidth, i%LaneWidth
		for k := 0; k < p.RowLengthLane(g); k++ {
			if p.ColumnLane(g, k, l) == j {
				return m.GetEntryLane(g, k, l)
			}
		}
		return 0
	}
	idx := i - p.NInternal
	for k := 0; k < p.RowLengthScalar(idx); k++ {
		if p.ColumnScalar(idx, k) == j {
			return m.GetEntryScalar(idx, k)
		}
	}
	return 0
}

// RowSumLane returns, for each lane in group g, the sum over that lane's
// row of stored entries.
func (m *Matrix) RowSumLane(g int) [LaneWidth]float64 {
	var sums [LaneWidth]float64
	for k := 0; k < m.Pattern.RowLengthLane(g); k++ {
		row := m.GetTensorLane(g, k)
		for l := 0; l < LaneWidth; l++ {
			sums[l] += row[l]
		}
	}
	return sums
}
