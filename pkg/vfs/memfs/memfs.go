// Package memfs is a minimal in-memory backend for package vfs: just
// enough of a filesystem to back open/read/write/lseek/chdir — a tree of
// named nodes, each either a directory or a byte slice, with no
// permissions, symlinks, or directory listing, since nothing in the
// process subsystem's syscall surface needs them.
package memfs

import (
	"errors"
	"os"
	"strings"
	"sync"

	"minikernel/pkg/vfs"
)

// ErrFileNotFound is returned when a path does not resolve to any node.
var ErrFileNotFound = errors.New("memfs: file not found")

// ErrFileExists is returned by O_CREATE|O_EXCL when path already exists.
var ErrFileExists = errors.New("memfs: file already exists")

// ErrIsDirectory is returned when an operation needs a regular file but
// path names a directory.
var ErrIsDirectory = errors.New("memfs: is a directory")

// node is a single entry in the tree: either a directory holding named
// children, or a regular file holding bytes. Every node has its own
// mutex since a file's bytes can be mutated by any descriptor that
// shares it, while its siblings in the parent directory are looked up
// independently.
type node struct {
	mu       sync.Mutex
	isDir    bool
	data     []byte
	children map[string]*node
}

// FS is an in-memory filesystem rooted at "/", which always exists and
// is always a directory.
type FS struct {
	mu   sync.Mutex
	root *node
}

// New creates an empty in-memory filesystem with just a root directory.
func New() *FS {
	return &FS{root: &node{isDir: true, children: map[string]*node{}}}
}

// split breaks a cleaned absolute path into its directory components.
func split(path string) []string {
	path = strings.TrimPrefix(vfs.Clean(path), "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// lookup walks path from the root, returning ErrFileNotFound if any
// component along the way is missing or not a directory.
func (fs *FS) lookup(path string) (*node, error) {
	parts := split(path)
	cur := fs.root
	for _, part := range parts {
		cur.mu.Lock()
		if !cur.isDir {
			cur.mu.Unlock()
			return nil, ErrFileNotFound
		}
		next, ok := cur.children[part]
		cur.mu.Unlock()
		if !ok {
			return nil, ErrFileNotFound
		}
		cur = next
	}
	return cur, nil
}

// mkdirAll walks path from the root, creating any missing intermediate
// directories, the way a real filesystem's open(O_CREAT) implicitly
// requires the parent directory to already exist — this backend instead
// auto-vivifies it, a deliberate simplification since nothing in the
// syscall surface ever calls an explicit mkdir.
func (fs *FS) mkdirAll(parts []string) *node {
	cur := fs.root
	for _, part := range parts {
		cur.mu.Lock()
		next, ok := cur.children[part]
		if !ok {
			next = &node{isDir: true, children: map[string]*node{}}
			cur.children[part] = next
		}
		cur.mu.Unlock()
		cur = next
	}
	return cur
}

// OpenFile implements vfs.FileSystem.
func (fs *FS) OpenFile(path string, flags int, perm os.FileMode) (vfs.File, error) {
	parts := split(path)
	if len(parts) == 0 {
		// The root directory itself: never created, never truncated.
		return &file{n: fs.root}, nil
	}

	dirParts, name := parts[:len(parts)-1], parts[len(parts)-1]
	dir, err := fs.lookup("/" + strings.Join(dirParts, "/"))
	if err != nil {
		if flags&os.O_CREATE == 0 {
			return nil, ErrFileNotFound
		}
		dir = fs.mkdirAll(dirParts)
	}

	dir.mu.Lock()
	n, exists := dir.children[name]
	if !exists {
		if flags&os.O_CREATE == 0 {
			dir.mu.Unlock()
			return nil, ErrFileNotFound
		}
		n = &node{}
		dir.children[name] = n
	}
	dir.mu.Unlock()

	if exists && flags&(os.O_CREATE|os.O_EXCL) == os.O_CREATE|os.O_EXCL {
		return nil, ErrFileExists
	}
	if n.isDir {
		return nil, ErrIsDirectory
	}
	if flags&os.O_TRUNC != 0 {
		n.mu.Lock()
		n.data = nil
		n.mu.Unlock()
	}
	return &file{n: n}, nil
}

// Stat implements vfs.FileSystem.
func (fs *FS) Stat(path string) (vfs.FileInfo, error) {
	n, err := fs.lookup(path)
	if err != nil {
		return vfs.FileInfo{}, err
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return vfs.FileInfo{Size: int64(len(n.data)), IsDir: n.isDir}, nil
}

// file is an open handle onto a node, with its own seek offset; several
// files can share one node (e.g. two processes that each opened the same
// path), each advancing independently while n.mu serializes their access
// to the underlying bytes.
type file struct {
	n      *node
	offset int64
}

func (f *file) Read(p []byte) (int, error) {
	f.n.mu.Lock()
	defer f.n.mu.Unlock()
	if f.offset >= int64(len(f.n.data)) {
		return 0, nil
	}
	n := copy(p, f.n.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *file) Write(p []byte) (int, error) {
	f.n.mu.Lock()
	defer f.n.mu.Unlock()
	end := f.offset + int64(len(p))
	if end > int64(len(f.n.data)) {
		grown := make([]byte, end)
		copy(grown, f.n.data)
		f.n.data = grown
	}
	n := copy(f.n.data[f.offset:end], p)
	f.offset += int64(n)
	return n, nil
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	f.n.mu.Lock()
	size := int64(len(f.n.data))
	f.n.mu.Unlock()

	var base int64
	switch whence {
	case os.SEEK_SET:
		base = 0
	case os.SEEK_CUR:
		base = f.offset
	case os.SEEK_END:
		base = size
	}
	f.offset = base + offset
	return f.offset, nil
}

func (f *file) Stat() (vfs.FileInfo, error) {
	f.n.mu.Lock()
	defer f.n.mu.Unlock()
	return vfs.FileInfo{Size: int64(len(f.n.data)), IsDir: f.n.isDir}, nil
}

func (f *file) Close() error { return nil }
