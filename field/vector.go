// Package field implements the multi-component, per-DOF-interleaved state
// vector the hyperbolic kernel reads and writes, together with its
// non-blocking ghost exchange.
//
// Grounded on original_source/source/multicomponent_vector.h's
// MultiComponentVector: an array-of-structs layout where every DOF's
// n_comp values are stored contiguously, generalized here into a plain Go
// struct (Go has no runtime polymorphism over n_comp the way the deal.II
// template does).
package field

import "github.com/notargets/idpfem/partition"

// Vector is an AoS-per-DOF buffer of NOwned rows times NComp components.
type Vector struct {
	NComp  int
	NOwned int
	data   []float64

	rank        *partition.Rank
	sendIndices map[int][]int // neighbor rank -> local indices to export
	recvIndices map[int][]int // neighbor rank -> local ghost indices to import into

	inflight []inflightRecv
}

type inflightRecv struct {
	from int
	ch   chan partition.Message
}

// NewVector allocates a zero Vector with nOwned rows of nComp components.
func NewVector(nOwned, nComp int) *Vector {
	return &Vector{NComp: nComp, NOwned: nOwned, data: make([]float64, nOwned*nComp)}
}

// Bind attaches the partition.Rank and per-neighbor index maps this Vector
// will use for ghost exchange. sendIndices/recvIndices are local DOF
// indices, built once by the offline assembler from the mesh's halo map.
func (v *Vector) Bind(rank *partition.Rank, sendIndices, recvIndices map[int][]int) {
	v.rank = rank
	v.sendIndices = sendIndices
	v.recvIndices = recvIndices
}

// GetTensor returns a writable view of DOF i's NComp values.
func (v *Vector) GetTensor(i int) []float64 {
	off := i * v.NComp
	return v.data[off : off+v.NComp]
}

// WriteTensor overwrites DOF i's NComp values.
func (v *Vector) WriteTensor(i int, vals []float64) {
	copy(v.GetTensor(i), vals)
}

// UpdateGhostValuesStart posts this rank's boundary-owned values to every
// neighbor and begins receiving their boundary values into this Vector's
// ghost range, without blocking — grounded on gocfd/utils.MailBox's
// post-then-later-receive pattern used for non-blocking element-neighbor
// data transport.
func (v *Vector) UpdateGhostValuesStart() {
	for to, idx := range v.sendIndices {
		buf := make([]float64, 0, len(idx)*v.NComp)
		for _, i := range idx {
			buf = append(buf, v.GetTensor(i)...)
		}
		v.rank.Post(to, buf)
	}
	v.inflight = v.inflight[:0]
	for from := range v.recvIndices {
		ch := make(chan partition.Message, 1)
		go func(from int, ch chan partition.Message) {
			ch <- v.rank.Receive(from)
		}(from, ch)
		v.inflight = append(v.inflight, inflightRecv{from: from, ch: ch})
	}
}

// UpdateGhostValuesFinish blocks until every posted ghost exchange for this
// round has completed and scatters the received values into the matching
// ghost indices.
func (v *Vector) UpdateGhostValuesFinish() {
	for _, p := range v.inflight {
		msg := <-p.ch
		idx := v.recvIndices[p.from]
		for k, i := range idx {
			off := k * v.NComp
			v.WriteTensor(i, msg.Data[off:off+v.NComp])
		}
	}
	v.inflight = v.inflight[:0]
}

// RowExchange is UpdateGhostValuesStart/Finish's transport generalized
// from fixed-width n_comp tuples to the variable-width rows
// hyperbolicmodule needs to halo-exchange l_ij: every boundary DOF's row
// can carry a different number of stored stencil entries, so each row is
// length-prefixed in the wire payload instead of sliced at a fixed stride.
type RowExchange struct {
	rank        *partition.Rank
	recvIndices map[int][]int
	inflight    []inflightRecv
}

// NewRowExchange builds a RowExchange bound to rank, receiving ghost rows
// for the local DOF indices listed in recvIndices.
func NewRowExchange(rank *partition.Rank, recvIndices map[int][]int) *RowExchange {
	return &RowExchange{rank: rank, recvIndices: recvIndices}
}

// Start posts this rank's boundary rows (one call to rowOf per local index
// in sendIndices) to every neighbor and begins a non-blocking receive for
// this rank's ghost rows, the same post-then-later-receive discipline
// UpdateGhostValuesStart uses.
func (r *RowExchange) Start(sendIndices map[int][]int, rowOf func(i int) []float64) {
	for to, idx := range sendIndices {
		buf := make([]float64, 0, len(idx)*2)
		for _, i := range idx {
			row := rowOf(i)
			buf = append(buf, float64(len(row)))
			buf = append(buf, row...)
		}
		r.rank.Post(to, buf)
	}
	r.inflight = r.inflight[:0]
	for from := range r.recvIndices {
		ch := make(chan partition.Message, 1)
		go func(from int, ch chan partition.Message) {
			ch <- r.rank.Receive(from)
		}(from, ch)
		r.inflight = append(r.inflight, inflightRecv{from: from, ch: ch})
	}
}

// Finish blocks until every posted round has completed and returns the
// received rows keyed by local ghost DOF index.
func (r *RowExchange) Finish() map[int][]float64 {
	result := make(map[int][]float64)
	for _, p := range r.inflight {
		msg := <-p.ch
		idx := r.recvIndices[p.from]
		pos := 0
		for _, i := range idx {
			n := int(msg.Data[pos])
			pos++
			result[i] = msg.Data[pos : pos+n]
			pos += n
		}
	}
	r.inflight = r.inflight[:0]
	return result
}
