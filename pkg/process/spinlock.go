package process

import (
	"runtime"
	"sync/atomic"
)

// Spinlock is a non-blocking lock: Lock spins (yielding the processor
// between attempts) rather than parking the goroutine. The process table
// and each process's pointer-field lock use one of these instead of a
// mutex, per the rule that the table lock must never be held across a
// blocking call.
type Spinlock struct {
	held int32
}

// Lock spins until the lock is acquired.
func (s *Spinlock) Lock() {
	for !atomic.CompareAndSwapInt32(&s.held, 0, 1) {
		runtime.Gosched()
	}
}

// Unlock releases the lock. Calling Unlock without a matching Lock is a
// programming error, as with any lock.
func (s *Spinlock) Unlock() {
	atomic.StoreInt32(&s.held, 0)
}
