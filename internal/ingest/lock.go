package ingest

import "sync/atomic"

// Lock provides non-blocking mutual exclusion for ingest runs: only one
// Ingester.Run of the owning Ingester may hold it at a time. It lives in
// memory, so it does not coordinate separate processes.
type Lock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking. Returns true if
// the lock was successfully acquired.
func (l *Lock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock. Must only be called by the goroutine that
// successfully acquired it.
func (l *Lock) Release() {
	l.state.Store(0)
}
