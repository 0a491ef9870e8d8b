package process

import (
	"os"

	"minikernel/pkg/kerrno"
)

// toVFSFlags translates this kernel's open() flags to the os.O_* flags
// package vfs expects, rather than relying on the numeric values lining
// up across platforms.
func toVFSFlags(flags int) int {
	var out int
	switch flags & O_ACCMODE {
	case O_WRONLY:
		out |= os.O_WRONLY
	case O_RDWR:
		out |= os.O_RDWR
	default:
		out |= os.O_RDONLY
	}
	if flags&O_CREAT != 0 {
		out |= os.O_CREATE
	}
	if flags&O_EXCL != 0 {
		out |= os.O_EXCL
	}
	if flags&O_TRUNC != 0 {
		out |= os.O_TRUNC
	}
	if flags&O_APPEND != 0 {
		out |= os.O_APPEND
	}
	return out
}

func modeFromAccmode(accmode int) Mode {
	switch accmode {
	case O_WRONLY:
		return ModeWrite
	case O_RDWR:
		return ModeReadWrite
	default:
		return ModeRead
	}
}

// Open implements the open() syscall: validate, vfs_open, wrap in a
// fresh Open-File, install at the lowest free descriptor.
func (p *Process) Open(path *string, flags int, mode os.FileMode) (int, kerrno.Errno) {
	clean, errno := copyInPath(path)
	if errno != 0 {
		return 0, errno
	}

	accmode := flags & O_ACCMODE
	if accmode != O_RDONLY && accmode != O_WRONLY && accmode != O_RDWR {
		return 0, kerrno.EINVAL
	}
	appendFl := flags&O_APPEND != 0
	if appendFl && accmode == O_RDONLY {
		return 0, kerrno.EINVAL
	}

	p.StateLockSpin.Lock()
	cwdPath := p.Cwd.Path()
	p.StateLockSpin.Unlock()

	vnode, errno := p.FS.Open(cwdPath, clean, toVFSFlags(flags), mode)
	if errno != 0 {
		return 0, errno
	}

	initialOffset := int64(0)
	if appendFl {
		if size, err := vnode.Size(); err == nil {
			initialOffset = size
		}
	}
	of := newOpenFile(vnode, modeFromAccmode(accmode), appendFl, initialOffset)

	fd, ok := p.FileTable.install(of)
	if !ok {
		of.release()
		return 0, kerrno.EMFILE
	}
	return fd, 0
}

// Close implements close(): detach the slot and release the Open-File.
func (p *Process) Close(fd int) kerrno.Errno {
	of := p.FileTable.remove(fd)
	if of == nil {
		return kerrno.EBADF
	}
	of.release()
	return 0
}

// Read implements read().
func (p *Process) Read(fd int, buf []byte) (int, kerrno.Errno) {
	of := p.FileTable.get(fd)
	if of == nil {
		// Canonically unreachable: CreateRunProgram always installs
		// STDIN/STDOUT/STDERR, so a missing slot is simply a bad
		// descriptor, not a console fallback (see the design note on
		// the console-fallback path).
		return 0, kerrno.EBADF
	}
	if !of.readable() {
		return 0, kerrno.EBADF
	}
	return of.read(buf)
}

// Write implements write().
func (p *Process) Write(fd int, buf []byte) (int, kerrno.Errno) {
	of := p.FileTable.get(fd)
	if of == nil {
		return 0, kerrno.EBADF
	}
	if !of.writable() {
		return 0, kerrno.EBADF
	}
	return of.write(buf)
}

// Lseek implements lseek().
func (p *Process) Lseek(fd int, pos int64, whence int) (int64, kerrno.Errno) {
	of := p.FileTable.get(fd)
	if of == nil {
		return 0, kerrno.EBADF
	}
	return of.seek(pos, whence)
}

// Dup2 implements dup2().
func (p *Process) Dup2(oldfd, newfd int) (int, kerrno.Errno) {
	if oldfd < 0 || oldfd >= OpenMax || newfd < 0 || newfd >= OpenMax {
		return 0, kerrno.EBADF
	}
	old := p.FileTable.get(oldfd)
	if old == nil {
		return 0, kerrno.EBADF
	}
	if oldfd == newfd {
		return newfd, 0
	}
	if existing := p.FileTable.get(newfd); existing != nil {
		existing.release()
	}
	old.acquire()
	p.FileTable.installAt(newfd, old)
	return newfd, 0
}

// Chdir implements chdir(): resolve, verify it is a directory, swap the
// held cwd reference.
func (p *Process) Chdir(path *string) kerrno.Errno {
	clean, errno := copyInPath(path)
	if errno != 0 {
		return errno
	}

	p.StateLockSpin.Lock()
	cwdPath := p.Cwd.Path()
	p.StateLockSpin.Unlock()

	next, errno := p.FS.Chdir(cwdPath, clean)
	if errno != 0 {
		return errno
	}

	p.StateLockSpin.Lock()
	old := p.Cwd
	p.Cwd = next
	p.StateLockSpin.Unlock()

	old.Decref()
	return 0
}

// Getcwd implements __getcwd(): copy the current working directory's
// path into buf, returning the number of bytes written.
func (p *Process) Getcwd(buf []byte) (int, kerrno.Errno) {
	if buf == nil {
		return 0, kerrno.EFAULT
	}
	if len(buf) == 0 {
		return 0, kerrno.EINVAL
	}
	p.StateLockSpin.Lock()
	path := p.Cwd.Path()
	p.StateLockSpin.Unlock()
	n := copy(buf, path)
	return n, 0
}
