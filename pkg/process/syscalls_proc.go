package process

import (
	"io"

	"minikernel/pkg/addrspace"
	"minikernel/pkg/kerrno"
	"minikernel/pkg/kthread"
)

// Fork implements the fork() syscall. Real fork duplicates the calling
// thread's execution so both parent and child return from the same
// call; a goroutine cannot be split that way, so the child's path is
// supplied explicitly as childEntry instead of being inferred from a
// trapframe copy. Fork builds the child (fresh PID, copied address
// space, shared cwd, shared descriptors) and starts childEntry on a new
// thread before returning the child's PID to the parent, matching "child
// thread activates its address space and begins running" from the
// source design's step 7.
func (p *Process) Fork(childEntry func(child *Process)) (int, kerrno.Errno) {
	child, errno := newProcessSlot(p.Name, p.Pid, p.FS)
	if errno != 0 {
		return 0, errno
	}

	p.StateLockSpin.Lock()
	parentAS := p.AS
	parentCwd := p.Cwd
	p.StateLockSpin.Unlock()

	child.AS = addrspace.Copy(parentAS)
	child.Cwd = parentCwd.Incref()

	for _, slot := range p.FileTable.snapshot() {
		slot.f.acquire()
		child.FileTable.installAt(slot.fd, slot.f)
	}

	kthread.Fork(child.Name, func() {
		child.AS.Activate()
		childEntry(child)
	})

	return child.Pid, 0
}

// Execv implements the execv() syscall. On any validation or load
// failure it returns a positive error kind, as usual. On success it
// never returns to its caller: it hands control to the loaded program's
// entry point and, when that returns, runs this process's exit path
// directly, exactly mirroring the source design's "enter_new_process
// does not return; if it does, panic" rule (enforced here by
// runtime.Goexit inside package kthread rather than merely documented).
func (p *Process) Execv(program *string, argv *[]string) kerrno.Errno {
	if program == nil {
		return kerrno.EFAULT
	}
	if argv == nil {
		return kerrno.EFAULT
	}

	progPath, errno := copyInPath(program)
	if errno != 0 {
		return errno
	}
	args, errno := copyInArgv(argv)
	if errno != 0 {
		return errno
	}

	p.StateLockSpin.Lock()
	cwdPath := p.Cwd.Path()
	oldAS := p.AS
	p.StateLockSpin.Unlock()

	progVnode, errno := p.FS.Open(cwdPath, progPath, toVFSFlags(O_RDONLY), 0)
	if errno != 0 {
		return errno
	}

	newAS := addrspace.Create()
	p.StateLockSpin.Lock()
	p.AS = newAS
	p.StateLockSpin.Unlock()
	newAS.Activate()

	restore := func() {
		p.StateLockSpin.Lock()
		p.AS = oldAS
		p.StateLockSpin.Unlock()
		newAS.Destroy()
	}

	size, err := progVnode.Size()
	if err != nil {
		progVnode.Decref()
		restore()
		return kerrno.EIO
	}
	data := make([]byte, size)
	if size > 0 {
		if _, err := progVnode.Read(data); err != nil && err != io.EOF {
			progVnode.Decref()
			restore()
			return kerrno.EIO
		}
	}

	entry, err := newAS.LoadELF(data)
	progVnode.Decref()
	if err != nil {
		restore()
		return kerrno.ENOEXEC
	}

	newAS.DefineStack()
	argc, argvAddr, _, ok := newAS.PushArgv(args)
	if !ok {
		restore()
		return kerrno.E2BIG
	}

	// Point of no return: the old address space is destroyed only now,
	// after the last possible failure (argv push), per the source
	// design's rollback ordering note.
	oldAS.Destroy()

	deliveredArgv := newAS.ReadArgv(argc, argvAddr)
	kthread.EnterNewProcess(entry, deliveredArgv, p.exitCleanup)
	return 0 // unreachable: EnterNewProcess never returns
}

// Waitpid implements waitpid(). It blocks on the target child's
// child_done condition variable until the child has exited, then reaps
// it: removes it from the process table and returns its PID.
func (p *Process) Waitpid(pid int, status *int, options int) (int, kerrno.Errno) {
	if options != 0 {
		return 0, kerrno.EINVAL
	}
	if pid <= 0 || pid > ProcMax {
		return 0, kerrno.ESRCH
	}
	child := globalTable.Lookup(pid)
	if child == nil {
		return 0, kerrno.ESRCH
	}
	if child.ParentPid != p.Pid {
		return 0, kerrno.ECHILD
	}

	child.StateLock.Lock()
	for !child.Exited {
		child.ChildDone.Wait()
	}
	code := child.ExitCode
	child.StateLock.Unlock()

	if status != nil {
		*status = decodeExit(code)
	}

	globalTable.Remove(pid)
	return pid, 0
}

// Exit implements _exit(). Like Execv on success, it never returns: the
// calling thread ends inside kthread.Exit after running the cleanup
// sequence (detach/destroy address space, drop cwd, sweep the file
// table, publish the exit code and wake any waiter).
func (p *Process) Exit(code int) {
	kthread.Exit(func() { p.exitCleanup(code) })
}

// exitCleanup performs _exit's steps 1-4. It is shared by Exit (the
// direct syscall) and Execv's simulated program completion, both of
// which end the calling thread immediately afterward.
func (p *Process) exitCleanup(code int) {
	p.StateLockSpin.Lock()
	as := p.AS
	p.AS = nil
	cwd := p.Cwd
	p.Cwd = nil
	p.ThreadCount = 0
	p.StateLockSpin.Unlock()

	if as != nil {
		as.Destroy()
	}
	if cwd != nil {
		cwd.Decref()
	}

	for _, slot := range p.FileTable.snapshot() {
		p.FileTable.remove(slot.fd)
		slot.f.release()
	}

	p.StateLock.Lock()
	if p.Exited {
		p.StateLock.Unlock()
		panic("process: _exit called twice for the same process")
	}
	p.ExitCode = encodeExit(code)
	p.Exited = true
	p.ChildDone.Broadcast()
	p.StateLock.Unlock()
}

// encodeExit packs a raw exit code into the wait-status word stored in
// ExitCode, mirroring the source design's _MKWAIT_EXIT: the low byte is
// reserved (zero here, since this kernel never reports a signal death)
// and the exit code occupies the next byte up. decodeExit is its inverse,
// applied when a waiting parent reads the status back out.
func encodeExit(code int) int {
	return (code & 0xff) << 8
}

// decodeExit recovers the raw exit code from a wait-status word built by
// encodeExit.
func decodeExit(status int) int {
	return (status >> 8) & 0xff
}
