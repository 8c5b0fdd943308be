package klogger

import "sync/atomic"

// SpinLock is a busy-waiting mutual exclusion lock.
//
// It never sleeps or yields, so it can be taken from interrupt handlers and
// before any scheduler exists. It is not fair: a waiter may starve under
// heavy contention. It is not recursive: locking it again from the context
// that already holds it (for example a fault handler that logs while the
// faulting code was logging) spins forever.
//
// The zero value is an unlocked lock.
type SpinLock struct {
	state atomic.Uint32
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	for !l.state.CompareAndSwap(0, 1) {
		// Wait on a plain load so contending CPUs don't bounce the cache
		// line with failed CAS attempts.
		for l.state.Load() != 0 {
		}
	}
}

// TryLock acquires the lock if it is free and reports whether it did.
func (l *SpinLock) TryLock() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Unlock releases the lock. Unlocking an unlocked SpinLock panics.
func (l *SpinLock) Unlock() {
	if !l.state.CompareAndSwap(1, 0) {
		panic("klogger: unlock of unlocked SpinLock")
	}
}
