package process

import (
	"sync"

	"minikernel/pkg/kerrno"
)

// Mode is the access mode an Open-File was created with.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
	ModeReadWrite
)

// backing is what an Open-File wraps: either a *kfs.Vnode (regular files
// and directories) or a *console.Vnode (the descriptors installed by
// CreateRunProgram). Both satisfy this shape without either package
// importing the other.
type backing interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
	Size() (int64, error)
	IsSeekable() bool
	Decref() error
}

// OpenFile is the shared object a file descriptor slot points at: a
// vnode, an access mode, a byte offset, and a reference count, all
// guarded by one mutex. fork and dup2 bump the refcount to install the
// same object at another slot; close and process exit drop it.
type OpenFile struct {
	mu       sync.Mutex
	vnode    backing
	mode     Mode
	appendFl bool
	offset   int64
	refcount int
}

// newOpenFile wraps vnode at the given mode and initial offset (0, or
// the file's current size when opened with O_APPEND) with refcount 1.
func newOpenFile(vnode backing, mode Mode, appendFl bool, initialOffset int64) *OpenFile {
	return &OpenFile{vnode: vnode, mode: mode, appendFl: appendFl, offset: initialOffset, refcount: 1}
}

// acquire bumps the refcount, used when the same Open-File is installed
// at a second descriptor slot (fork, dup2).
func (f *OpenFile) acquire() {
	f.mu.Lock()
	f.refcount++
	f.mu.Unlock()
}

// release drops the refcount and, if it reaches zero, closes the vnode.
// Any close error is returned so callers can decide whether to surface
// it; per the spec the object is freed regardless.
func (f *OpenFile) release() error {
	f.mu.Lock()
	f.refcount--
	done := f.refcount <= 0
	f.mu.Unlock()
	if !done {
		return nil
	}
	return f.vnode.Decref()
}

// readable/writable report whether f's mode permits the operation,
// without taking the lock: mode is immutable after construction.
func (f *OpenFile) readable() bool { return f.mode == ModeRead || f.mode == ModeReadWrite }
func (f *OpenFile) writable() bool { return f.mode == ModeWrite || f.mode == ModeReadWrite }

// read performs a VFS read at the current offset under f's lock and
// advances the offset by the bytes actually read. The offset is left
// unchanged on error.
func (f *OpenFile) read(buf []byte) (int, kerrno.Errno) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.vnode.IsSeekable() {
		if _, err := f.vnode.Seek(f.offset, SEEK_SET); err != nil {
			return 0, kerrno.FromErr(err)
		}
	}
	n, err := f.vnode.Read(buf)
	if err != nil && n == 0 {
		return 0, kerrno.FromErr(err)
	}
	f.offset += int64(n)
	return n, 0
}

// write performs a VFS write at the current offset (or at end-of-file
// when opened APPEND) under f's lock and advances the offset.
func (f *OpenFile) write(buf []byte) (int, kerrno.Errno) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.vnode.IsSeekable() {
		pos := f.offset
		if f.appendFl {
			size, err := f.vnode.Size()
			if err == nil {
				pos = size
			}
		}
		if _, err := f.vnode.Seek(pos, SEEK_SET); err != nil {
			return 0, kerrno.FromErr(err)
		}
		f.offset = pos
	}
	n, err := f.vnode.Write(buf)
	if err != nil && n == 0 {
		return 0, kerrno.FromErr(err)
	}
	f.offset += int64(n)
	return n, 0
}

// seek recomputes the offset per whence, rejecting a negative result,
// and updates f.offset under lock.
func (f *OpenFile) seek(pos int64, whence int) (int64, kerrno.Errno) {
	if !f.vnode.IsSeekable() {
		return 0, kerrno.ESPIPE
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var base int64
	switch whence {
	case SEEK_SET:
		base = 0
	case SEEK_CUR:
		base = f.offset
	case SEEK_END:
		size, err := f.vnode.Size()
		if err != nil {
			return 0, kerrno.FromErr(err)
		}
		base = size
	default:
		return 0, kerrno.EINVAL
	}

	newOff := base + pos
	if newOff < 0 {
		return 0, kerrno.EINVAL
	}
	f.offset = newOff
	return newOff, 0
}
