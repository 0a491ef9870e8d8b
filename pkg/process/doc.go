// Package process implements the kernel's process and file-descriptor
// subsystem: the process table, the Process object, the shared Open-File
// object, per-process file tables, and the syscalls that sit on top of
// them (getpid, fork, execv, waitpid, _exit, open, close, read, write,
// lseek, dup2, chdir, __getcwd).
//
// The virtual file system, the address-space manager, the thread
// scheduler, and the console are external collaborators (packages kfs,
// addrspace, kthread, console); this package consumes their narrow
// interfaces and owns none of their internals.
//
// # Locking
//
// Three lock kinds appear, always acquired in this order: the process
// table's Spinlock, a process's StateLockSpin (guarding its address
// space, cwd, and thread count), and an Open-File's own mutex. A
// process's StateLock/ChildDone pair (guarding Exited/ExitCode) is
// acquired independently of StateLockSpin and is the only lock a syscall
// may block on indefinitely (waitpid).
//
// # fork and execv as goroutines
//
// Real fork duplicates the calling thread so both parent and child
// resume from the same return point; a goroutine has no such split, so
// Fork takes the child's continuation as an explicit function argument
// instead. Real execv hands control to the loaded program and never
// returns to its caller on success; Execv mirrors that by ending the
// calling goroutine (via package kthread) once the simulated program's
// entry point completes, rather than merely documenting the rule.
package process
