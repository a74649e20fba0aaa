// Package dispatch implements the one-shot synchronization latch that
// lets worker-team members overlap local computation with a halo
// exchange: each worker calls Check once it is locally ready, and the
// payload (e.g. posting the ghost update) fires exactly once, the instant
// the last worker reports ready — whichever worker that happens to be.
//
// Grounded line-for-line on original_source/source/openmp.h's
// SynchronizationDispatch<Payload>.
package dispatch

import "sync/atomic"

// Latch fires payload exactly once, either when every one of nWorkers
// participants has called Check(true, ...), or when Close is called
// (e.g. at worker-team teardown), whichever happens first — mirroring
// SynchronizationDispatch's destructor firing the payload if it was never
// triggered by the counter reaching omp_get_num_threads().
type Latch struct {
	payload   func()
	nWorkers  int32
	counter   int32
	fired     int32 // 0 or 1, set exactly once via CompareAndSwap
}

// NewLatch builds a Latch over nWorkers participants that will invoke
// payload the first time it fires.
func NewLatch(nWorkers int, payload func()) *Latch {
	return &Latch{payload: payload, nWorkers: int32(nWorkers)}
}

// Check is called by one worker once it is locally ready. condition lets a
// worker skip counting itself (e.g. it has no boundary DOFs this step and
// so never needs to participate), mirroring the source's
// check(thread_ready, condition) signature.
func (l *Latch) Check(threadReady bool, condition bool) {
	if !threadReady || !condition {
		return
	}
	if atomic.AddInt32(&l.counter, 1) == l.nWorkers {
		l.fire()
	}
}

// Close fires the payload if it has not fired yet, mirroring the
// destructor's unconditional fire-if-not-already-fired behavior.
func (l *Latch) Close() {
	l.fire()
}

func (l *Latch) fire() {
	if atomic.CompareAndSwapInt32(&l.fired, 0, 1) {
		l.payload()
	}
}
