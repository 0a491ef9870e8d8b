package process

import (
	"sync"

	"github.com/google/uuid"

	"minikernel/pkg/addrspace"
	"minikernel/pkg/console"
	"minikernel/pkg/kerrno"
	"minikernel/pkg/kfs"
)

// Process is the kernel's per-process object: identity, address space,
// current working directory, file table, and the exit-coordination
// state a parent's waitpid blocks on.
//
// AS, Cwd and ThreadCount are guarded by StateLockSpin, a spinlock, since
// they are touched by fork/execv bookkeeping that must not block; Exited
// and ExitCode are guarded by StateLock, a mutex, since waiting for them
// to change (ChildDone) is an inherently blocking operation. The two
// locks are never held at once.
type Process struct {
	Pid       int
	ParentPid int
	Name      string

	// InstanceID identifies this process object uniquely and permanently,
	// unlike Pid: allocatePid's circular scan recycles PIDs once the
	// table wraps, so two unrelated processes can share a Pid value over
	// the table's lifetime. Log lines and tests that need to name "this
	// exact process, not whoever holds this PID later" use InstanceID.
	InstanceID string

	FS *kfs.FS

	StateLockSpin Spinlock
	AS            *addrspace.AddressSpace
	Cwd           *kfs.Vnode
	ThreadCount   int

	FileTable *FileTable

	StateLock sync.Mutex
	ChildDone *sync.Cond
	Exited    bool
	ExitCode  int
}

// newProcessSlot allocates a PID, publishes an empty process under it in
// the global table, and returns the process with a fresh file table and
// thread count 1. It does not set up an address space, cwd, or standard
// descriptors; CreateRunProgram and Fork finish construction differently.
func newProcessSlot(name string, parentPid int, fs *kfs.FS) (*Process, kerrno.Errno) {
	p := &Process{
		Name:        name,
		ParentPid:   parentPid,
		InstanceID:  uuid.NewString(),
		FS:          fs,
		FileTable:   &FileTable{},
		ThreadCount: 1,
	}
	p.ChildDone = sync.NewCond(&p.StateLock)

	globalTable.spin.Lock()
	pid, errno := globalTable.allocatePid()
	if errno != 0 {
		globalTable.spin.Unlock()
		return nil, errno
	}
	p.Pid = pid
	globalTable.insertLocked(p)
	globalTable.spin.Unlock()

	return p, 0
}

// CreateRunProgram builds the initial user process: a fresh address
// space, a root working directory, and descriptors 0/1/2 bound to the
// console. This is the only path that installs stdio; Fork copies
// whatever descriptors the parent holds. Read and Write have no console
// fallback: once one of descriptors 0/1/2 is closed, it returns EBADF
// until another open or dup2 installs something there.
func CreateRunProgram(name string, fs *kfs.FS, con *console.Device) (*Process, kerrno.Errno) {
	p, errno := newProcessSlot(name, -1, fs)
	if errno != 0 {
		return nil, errno
	}

	p.AS = addrspace.Create()

	cwd, errno := fs.Chdir("/", "/")
	if errno != 0 {
		globalTable.Remove(p.Pid)
		return nil, errno
	}
	p.Cwd = cwd

	stdin := newOpenFile(console.NewVnode(con, true, false), ModeRead, false, 0)
	stdout := newOpenFile(console.NewVnode(con, false, true), ModeWrite, false, 0)
	stderr := newOpenFile(console.NewVnode(con, false, true), ModeWrite, false, 0)
	p.FileTable.installAt(STDIN, stdin)
	p.FileTable.installAt(STDOUT, stdout)
	p.FileTable.installAt(STDERR, stderr)

	return p, 0
}

// Getpid returns p's own PID. It never fails.
func (p *Process) Getpid() int {
	return p.Pid
}
