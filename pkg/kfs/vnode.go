package kfs

import (
	"sync"

	"minikernel/pkg/kerrno"
	"minikernel/pkg/vfs"
)

// Vnode is the kernel-facing handle onto a VFS file, with its own
// reference count layered on top of the vfs.File it wraps. This is the
// refcount the process subsystem's shared cwd field contributes to: two
// processes sharing a working directory after fork hold the same *Vnode
// and each contributes one reference, independent of how many Open-File
// objects (package process) happen to reference the same underlying
// file for read/write.
type Vnode struct {
	mu    sync.Mutex
	file  vfs.File
	path  string
	isDir bool
	refs  int
}

func newVnode(file vfs.File, path string, isDir bool) *Vnode {
	return &Vnode{file: file, path: path, isDir: isDir, refs: 1}
}

// Incref adds a reference to v, returning v for chaining at call sites
// that install the same vnode into a second holder (e.g. fork sharing cwd).
func (v *Vnode) Incref() *Vnode {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.refs++
	return v
}

// Decref drops a reference, closing the underlying file once the count
// reaches zero. It is safe to call exactly once per Incref/creation.
func (v *Vnode) Decref() error {
	v.mu.Lock()
	v.refs--
	done := v.refs <= 0
	v.mu.Unlock()
	if !done {
		return nil
	}
	if v.file == nil {
		return nil
	}
	return v.file.Close()
}

// Path returns the path this vnode was opened from.
func (v *Vnode) Path() string { return v.path }

// IsDir reports whether this vnode refers to a directory.
func (v *Vnode) IsDir() bool { return v.isDir }

// IsSeekable reports whether lseek is meaningful on this vnode. Every
// plain file vnode is seekable; a directory is not.
func (v *Vnode) IsSeekable() bool { return !v.isDir }

// Read, Write and Seek delegate to the wrapped vfs.File under v's lock, so
// a vnode shared by dup2'd descriptors sees consistent offsets. A
// directory vnode (no backing vfs.File — see Chdir) rejects all three;
// nothing in this kernel ever issues them against a cwd reference. Any
// collaborator error is translated to a kerrno.Errno here, at the VFS
// boundary, so kerrno.FromErr on the process side recovers the real
// error kind instead of falling back to a flat EIO.
func (v *Vnode) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.file == nil {
		return 0, kerrno.EINVAL
	}
	n, err := v.file.Read(p)
	if err != nil {
		return n, translate(err)
	}
	return n, nil
}

func (v *Vnode) Write(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.file == nil {
		return 0, kerrno.EINVAL
	}
	n, err := v.file.Write(p)
	if err != nil {
		return n, translate(err)
	}
	return n, nil
}

func (v *Vnode) Seek(offset int64, whence int) (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.file == nil {
		return 0, kerrno.EINVAL
	}
	n, err := v.file.Seek(offset, whence)
	if err != nil {
		return n, translate(err)
	}
	return n, nil
}

// Size returns the current file size, used by lseek's SEEK_END.
func (v *Vnode) Size() (int64, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.file == nil {
		return 0, kerrno.EINVAL
	}
	info, err := v.file.Stat()
	if err != nil {
		return 0, translate(err)
	}
	return info.Size, nil
}
