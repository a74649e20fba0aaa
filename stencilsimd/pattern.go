// Package stencilsimd implements the lane-interleaved sparse-row storage
// that the hyperbolic time-step kernel iterates over. Rows [0,NInternal)
// are grouped into lane groups of width W and their column indices are
// stored with unit stride across the W lanes of a group so that a
// SIMD-style loop body (here, a tight Go loop over lanes) reads and writes
// contiguous memory; rows [NInternal,NOwned) are a plain scalar tail stored
// as ordinary CSR.
//
// Grounded on gocfd/utils/sparse_block.go's BlockSparse (explicit
// address/offset bookkeeping into one flat backing array), generalized
// from block-dense storage to sparse-row-with-lane-interleave.
package stencilsimd

import "fmt"

// LaneWidth is the fixed SIMD lane width used throughout the kernel. Go has
// no portable hardware-SIMD type in the standard library or in any pack
// dependency (other_examples/ajroetker-go-highway is loose files with no
// fetchable module), so lane groups are realized as a tight scalar loop
// over unit-stride memory rather than a hardware vector register.
const LaneWidth = 4

// Pattern describes the sparsity of a square NOwned x NOwned matrix split
// into a lane-interleaved block [0,NInternal) and a scalar tail
// [NInternal,NOwned). NInternal is always a multiple of LaneWidth.
type Pattern struct {
	NInternal int
	NOwned    int

	// lane block: NInternal/LaneWidth groups.
	laneRowLength []int // per group, padded max row length
	laneOffset    []int // per group, flat offset into laneColumns
	laneColumns   []int // len = sum(laneRowLength[g]) * LaneWidth
	laneTranspose []int // parallel to laneColumns: position of the transpose entry

	// scalar tail: plain CSR.
	rowLength       []int // per scalar row, unpadded
	scalarOffset    []int // per scalar row, offset into scalarColumns
	scalarColumns   []int
	scalarTranspose []int
}

// NGroups returns the number of lane groups in the internal block.
func (p *Pattern) NGroups() int { return p.NInternal / LaneWidth }

// RowLengthLane returns the padded row length shared by every row in lane
// group g.
func (p *Pattern) RowLengthLane(g int) int { return p.laneRowLength[g] }

// RowLengthScalar returns the row length of scalar-tail row i (i is a
// local index into [0, NOwned-NInternal)).
func (p *Pattern) RowLengthScalar(i int) int { return p.rowLength[i] }

// ColumnLane returns the global column index of slot k (0<=k<RowLengthLane(g))
// for lane l (0<=l<LaneWidth) within group g. A padding slot (k beyond a
// given row's true row_length) stores the row's own diagonal DOF with a
// zero coefficient, so it contributes nothing to any stencil sum.
func (p *Pattern) ColumnLane(g, k, l int) int {
	base := p.laneOffset[g] + k*LaneWidth
	return p.laneColumns[base+l]
}

// ColumnScalar returns the global column index of slot k in scalar-tail
// row i.
func (p *Pattern) ColumnScalar(i, k int) int {
	return p.scalarColumns[p.scalarOffset[i]+k]
}

// TransposeLaneIndex/TransposeScalarIndex return the flat storage index (in
// the same addressing scheme as a Matrix's data array: lane entries first,
// scalar-tail entries offset by laneDataSize()) of the transposed entry
// (j,i) given entry (i,j) is slot k of lane l in group g.
func (p *Pattern) TransposeLaneIndex(g, k, l int) int {
	base := p.laneOffset[g] + k*LaneWidth
	return p.laneTranspose[base+l]
}

func (p *Pattern) TransposeScalarIndex(i, k int) int {
	return p.scalarTranspose[p.scalarOffset[i]+k]
}

// LaneFlatIndex and ScalarFlatIndex return the offset of entry (g,k,l) /
// (i,k) within a Matrix's lane region / scalar-tail region respectively.
func (p *Pattern) LaneFlatIndex(g, k, l int) int {
	return p.laneOffset[g] + k*LaneWidth + l
}

func (p *Pattern) ScalarFlatIndex(i, k int) int {
	return p.scalarOffset[i] + k
}

func (p *Pattern) laneDataSize() int {
	if p.NGroups() == 0 {
		return 0
	}
	last := p.NGroups() - 1
	return p.laneOffset[last] + p.laneRowLength[last]*LaneWidth
}

func (p *Pattern) scalarDataSize() int {
	n := len(p.rowLength)
	if n == 0 {
		return 0
	}
	return p.scalarOffset[n-1] + p.rowLength[n-1]
}

// Builder accumulates row->column adjacency before Pattern freezes it into
// the lane-interleaved layout. Rows within one lane group must all share
// the same neighbor count after build-time padding; Builder pads them
// itself by repeating the row's own diagonal index.
type Builder struct {
	nOwned int
	adj    [][]int
}

// NewBuilder creates a Builder for nOwned rows.
func NewBuilder(nOwned int) *Builder {
	adj := make([][]int, nOwned)
	for i := range adj {
		adj[i] = []int{i} // every row is its own neighbor (diagonal)
	}
	return &Builder{nOwned: nOwned, adj: adj}
}

// Connect records that rows i and j are mutual stencil neighbors.
func (b *Builder) Connect(i, j int) {
	if i == j {
		return
	}
	b.adj[i] = appendUnique(b.adj[i], j)
	b.adj[j] = appendUnique(b.adj[j], i)
}

func appendUnique(s []int, v int) []int {
	for _, x := range s {
		if x == v {
			return s
		}
	}
	return append(s, v)
}

// Build finalizes the Pattern. nInternal is the caller-chosen count of
// lane-eligible rows (rounded down to a multiple of LaneWidth internally);
// every row must have been Connect-ed before calling Build.
func (b *Builder) Build(nInternal int) *Pattern {
	nInternal -= nInternal % LaneWidth
	if nInternal < 0 || nInternal > b.nOwned {
		panic(fmt.Sprintf("stencilsimd: nInternal %d out of range [0,%d]", nInternal, b.nOwned))
	}
	p := &Pattern{NInternal: nInternal, NOwned: b.nOwned}

	nGroups := nInternal / LaneWidth
	p.laneRowLength = make([]int, nGroups)
	p.laneOffset = make([]int, nGroups)
	offset := 0
	for g := 0; g < nGroups; g++ {
		maxLen := 0
		for l := 0; l < LaneWidth; l++ {
			row := g*LaneWidth + l
			if n := len(b.adj[row]); n > maxLen {
				maxLen = n
			}
		}
		p.laneRowLength[g] = maxLen
		p.laneOffset[g] = offset
		offset += maxLen * LaneWidth
	}
	p.laneColumns = make([]int, offset)
	for g := 0; g < nGroups; g++ {
		for l := 0; l < LaneWidth; l++ {
			row := g*LaneWidth + l
			nb := b.adj[row]
			for k := 0; k < p.laneRowLength[g]; k++ {
				col := row // padding: self, zero-weight
				if k < len(nb) {
					col = nb[k]
				}
				p.laneColumns[p.laneOffset[g]+k*LaneWidth+l] = col
			}
		}
	}

	nScalar := b.nOwned - nInternal
	p.rowLength = make([]int, nScalar)
	p.scalarOffset = make([]int, nScalar)
	soff := 0
	for i := 0; i < nScalar; i++ {
		row := nInternal + i
		p.rowLength[i] = len(b.adj[row])
		p.scalarOffset[i] = soff
		soff += p.rowLength[i]
	}
	p.scalarColumns = make([]int, soff)
	for i := 0; i < nScalar; i++ {
		row := nInternal + i
		for k, col := range b.adj[row] {
			p.scalarColumns[p.scalarOffset[i]+k] = col
		}
	}

	p.buildTranspose()
	return p
}

// buildTranspose locates, for every stored entry (i,j), the flat index of
// entry (j,i), so that passes needing b_ij/b_ji (e.g. the limiter's p_ij
// correction) can read both without a hash lookup in the hot loop.
func (p *Pattern) buildTranspose() {
	index := make(map[[2]int]int)

	for g := 0; g < p.NGroups(); g++ {
		for l := 0; l < LaneWidth; l++ {
			row := g*LaneWidth + l
			for k := 0; k < p.laneRowLength[g]; k++ {
				col := p.ColumnLane(g, k, l)
				index[[2]int{row, col}] = p.LaneFlatIndex(g, k, l)
			}
		}
	}
	for i := range p.rowLength {
		row := p.NInternal + i
		for k := 0; k < p.rowLength[i]; k++ {
			col := p.ColumnScalar(i, k)
			index[[2]int{row, col}] = p.laneDataSize() + p.ScalarFlatIndex(i, k)
		}
	}

	p.laneTranspose = make([]int, len(p.laneColumns))
	for g := 0; g < p.NGroups(); g++ {
		for l := 0; l < LaneWidth; l++ {
			row := g*LaneWidth + l
			for k := 0; k < p.laneRowLength[g]; k++ {
				col := p.ColumnLane(g, k, l)
				flat, ok := index[[2]int{col, row}]
				if !ok {
					flat = index[[2]int{col, col}]
				}
				p.laneTranspose[p.LaneFlatIndex(g, k, l)] = flat
			}
		}
	}
	p.scalarTranspose = make([]int, len(p.scalarColumns))
	for i := range p.rowLength {
		row := p.NInternal + i
		for k := 0; k < p.rowLength[i]; k++ {
			col := p.ColumnScalar(i, k)
			flat, ok := index[[2]int{col, row}]
			if !ok {
				flat = index[[2]int{col, col}]
			}
			p.scalarTranspose[p.ScalarFlatIndex(i, k)] = flat
		}
	}
}
