// Package kthread stands in for the kernel's thread scheduler collaborator:
// fork-a-thread, yield, and the enter_new_process handoff that hands a
// freshly execv'd address space its first instruction. The spec treats
// scheduling, locks, and condition variables as externally supplied
// primitives; this package gives fork and execv a real goroutine to run
// on instead of inventing a scheduler.
package kthread

import "runtime"

// Fork starts name's thread body in a new goroutine. It returns
// immediately in the caller (the parent thread); the child begins
// running body concurrently. This plays the role of the spec's
// thread-level fork primitive, distinct from the process-level fork
// syscall in package process which calls it once address-space and
// file-table setup is complete.
func Fork(name string, body func()) {
	go body()
}

// Yield relinquishes the processor, matching the spec's cooperative
// yield primitive. Go's goroutine scheduler already preempts fairly, so
// this is a hint rather than a requirement, but call sites that mirror
// the original design's yield points keep the same shape.
func Yield() {
	runtime.Gosched()
}

// Exit runs cleanup (the process's remaining teardown, e.g. the rest of
// _exit after the file-table sweep) and then terminates the calling
// goroutine. It never returns: thread_exit returning is a fatal
// condition in the source design, and runtime.Goexit enforces that here
// instead of merely documenting it.
func Exit(cleanup func()) {
	if cleanup != nil {
		cleanup()
	}
	runtime.Goexit()
}

// EnterNewProcess hands control to a freshly loaded program's entry
// point and, when it returns, funnels its result into onExit (the
// process's _exit path) before terminating the thread. A real kernel's
// enter_new_process jumps to user mode and is never seen to return;
// here the "return" is the simulated program function returning its
// exit status, which onExit consumes exactly once before Exit ends the
// goroutine. Callers must treat this function as non-returning and
// place nothing after it.
func EnterNewProcess(entry func(argv []string) int, argv []string, onExit func(code int)) {
	code := entry(argv)
	Exit(func() {
		if onExit != nil {
			onExit(code)
		}
	})
}
