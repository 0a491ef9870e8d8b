// Package vfs names the narrow virtual-filesystem surface the process
// subsystem actually calls: open-with-flags, stat, and the handful of
// operations an open file supports. It exists so the syscall layer in
// package process never has to know whether the filesystem behind it is
// in-memory, disk-backed, or something else, and deliberately stops
// there — directory listing, renaming, symlinks, and permission
// management are all real filesystem features, but none of them has a
// caller anywhere in this kernel's syscall surface.
package vfs

import "os"

// FileSystem is the VFS collaborator open() and chdir() resolve against.
type FileSystem interface {
	// OpenFile opens path with the given flags (os.O_RDONLY, O_WRONLY,
	// O_RDWR, O_CREATE, O_EXCL, O_TRUNC, O_APPEND) and permissions.
	OpenFile(path string, flags int, perm os.FileMode) (File, error)

	// Stat reports whether path exists and, if so, its size and whether
	// it is a directory. Used by chdir (to confirm a directory) and by
	// lseek's SEEK_END (via File.Stat on an already-open file).
	Stat(path string) (FileInfo, error)
}

// File is a single open file, the handle an Open-File object wraps.
type File interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)

	// Seek repositions the file per whence (io.SeekStart/Current/End).
	Seek(offset int64, whence int) (int64, error)

	Stat() (FileInfo, error)
	Close() error
}

// FileInfo describes a file or directory. The subsystem only ever needs
// its size (for SEEK_END and O_APPEND) and whether it is a directory
// (for chdir/open to reject directory opens and non-directory chdirs).
type FileInfo struct {
	Size  int64
	IsDir bool
}
