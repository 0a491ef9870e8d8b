// Package kfs adapts package vfs's FileSystem/File interfaces to the
// kernel's own error taxonomy and path-resolution rules. It plays the
// role of the VFS collaborator named throughout the process/file
// descriptor spec: open, close, read, write, seekability, chdir and
// getcwd all funnel through here so the syscall layer in package process
// never touches package vfs directly.
package kfs

import (
	"errors"
	"os"
	"syscall"

	"minikernel/pkg/kerrno"
	"minikernel/pkg/vfs"
	"minikernel/pkg/vfs/memfs"
)

// FS wraps a vfs.FileSystem and resolves relative paths against a
// caller-supplied working directory, the way the kernel's vfs_open
// collaborator resolves a process's cwd.
type FS struct {
	backing vfs.FileSystem
}

// New wraps backing as the kernel's filesystem collaborator.
func New(backing vfs.FileSystem) *FS {
	return &FS{backing: backing}
}

// Resolve turns path into an absolute path, joining it against cwd when
// it is relative. An empty path is rejected, matching every syscall in
// the spec that treats an empty pathname as EINVAL.
func (fs *FS) Resolve(cwd, path string) (string, kerrno.Errno) {
	if path == "" {
		return "", kerrno.EINVAL
	}
	if len(path) > vfs.MaxPathLength {
		return "", kerrno.ENAMETOOLONG
	}
	if vfs.IsAbs(path) {
		return vfs.Clean(path), 0
	}
	return vfs.Clean(vfs.Join(cwd, path)), 0
}

// Open resolves path against cwd and opens it with the given flags,
// returning a fresh *Vnode with one reference on success.
func (fs *FS) Open(cwd, path string, flags int, perm os.FileMode) (*Vnode, kerrno.Errno) {
	abs, errno := fs.Resolve(cwd, path)
	if errno != 0 {
		return nil, errno
	}
	f, err := fs.backing.OpenFile(abs, flags, perm)
	if err != nil {
		return nil, translate(err)
	}
	info, err := f.Stat()
	isDir := err == nil && info.IsDir
	return newVnode(f, abs, isDir), 0
}

// Stat resolves path against cwd and returns its FileInfo.
func (fs *FS) Stat(cwd, path string) (vfs.FileInfo, kerrno.Errno) {
	abs, errno := fs.Resolve(cwd, path)
	if errno != 0 {
		return vfs.FileInfo{}, errno
	}
	info, err := fs.backing.Stat(abs)
	if err != nil {
		return vfs.FileInfo{}, translate(err)
	}
	return info, 0
}

// Chdir verifies that path (resolved against cwd) names a directory and
// returns the new, open vnode the caller should install as its cwd,
// replacing whatever vnode it previously held.
func (fs *FS) Chdir(cwd, path string) (*Vnode, kerrno.Errno) {
	abs, errno := fs.Resolve(cwd, path)
	if errno != 0 {
		return nil, errno
	}
	info, err := fs.backing.Stat(abs)
	if err != nil {
		return nil, translate(err)
	}
	if !info.IsDir {
		return nil, kerrno.EINVAL
	}
	// Directories have no vfs.File handle in this backend (OpenFile
	// refuses to open one read-only); the vnode holds only the
	// resolved path, which is all a cwd reference is ever used for.
	return newVnode(nil, abs, true), 0
}

// translate maps a vfs-layer error to the kernel's Errno taxonomy. The
// in-memory backend reports not-found/exists conditions with its own
// sentinel errors rather than the os package's, so those are checked
// explicitly; os.IsNotExist/os.IsExist cover any backend that does wrap
// the standard library's sentinels instead. Anything unrecognized
// becomes EIO so a collaborator failure is never silently swallowed.
//
// This is also what a Read/Write error on an already-open Vnode is
// funneled through (see vnode.go), so a backend that can report
// ENOSPC-shaped failures propagates them to the syscall layer instead of
// being flattened to EIO; the in-memory backend never produces one,
// since it has no notion of running out of space.
func translate(err error) kerrno.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, memfs.ErrFileNotFound), os.IsNotExist(err):
		return kerrno.ENOENT
	case errors.Is(err, memfs.ErrFileExists), os.IsExist(err):
		return kerrno.EEXIST
	case errors.Is(err, memfs.ErrIsDirectory):
		return kerrno.EINVAL
	case errors.Is(err, syscall.ENOSPC):
		return kerrno.ENOSPC
	default:
		return kerrno.EIO
	}
}
