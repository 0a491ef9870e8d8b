// Package kerrno defines the error-kind taxonomy shared by the kernel's
// process/file-descriptor syscall layer and its collaborators. The VFS
// facade (package kfs) and the console vnode return one of these kinds
// rather than an opaque error, so a syscall handler can propagate it
// verbatim to user space without remapping; the address-space loader
// returns plain errors, which Execv maps to ENOEXEC.
//
// The numeric values mirror conventional POSIX errno numbers, matching
// this teaching kernel's ABI-compatibility goal (see the original
// specification's error-handling design, §7).
package kerrno

import "fmt"

// Errno is a positive error kind returned by a syscall handler on failure.
// The zero value means success and is never returned as an error.
type Errno int

// Error kinds surfaced to user mode. Values follow conventional POSIX
// errno numbering where one exists.
const (
	_            Errno = iota
	EBADF        Errno = 9    // descriptor out of range, not installed, or mode forbids the op
	ENOMEM       Errno = 12   // allocation failure
	EFAULT       Errno = 14   // user pointer null or rejected by copy helpers
	EINVAL       Errno = 22   // flag/whence/option invalid, empty path, impossible offset
	ESPIPE       Errno = 29   // lseek on a non-seekable object
	ENOSPC       Errno = 28   // VFS write hit filesystem-full
	EMFILE       Errno = 24   // per-process file table full
	ENAMETOOLONG Errno = 36   // path or argv string exceeds its maximum
	ENOPROC      Errno = 100  // PID allocation failed
	ESRCH        Errno = 3    // PID out of range or not in the process table
	ECHILD       Errno = 10   // target process exists but caller is not its parent
	EIO          Errno = 5    // hardware-level I/O failure
	E2BIG        Errno = 7    // argv footprint exceeds ARG_MAX
	ENOSYS       Errno = 38   // collaborator does not implement the requested operation
	ENOENT       Errno = 2    // VFS lookup found no such file
	EEXIST       Errno = 17   // O_CREATE|O_EXCL target already present
	ENOEXEC      Errno = 8    // program image failed the loader's sanity check
)

var names = map[Errno]string{
	EBADF:        "bad file descriptor",
	ENOMEM:       "out of memory",
	EFAULT:       "bad address",
	EINVAL:       "invalid argument",
	ESPIPE:       "illegal seek",
	ENOSPC:       "no space left on device",
	EMFILE:       "too many open files",
	ENAMETOOLONG: "name too long",
	ENOPROC:      "no process slot available",
	ESRCH:        "no such process",
	ECHILD:       "not a child of the caller",
	EIO:          "I/O error",
	E2BIG:        "argument list too long",
	ENOSYS:       "function not implemented",
	ENOENT:       "no such file or directory",
	EEXIST:       "file exists",
	ENOEXEC:      "exec format error",
}

// Error implements the error interface so an Errno can be returned and
// compared anywhere plain Go errors are expected.
func (e Errno) Error() string {
	if s, ok := names[e]; ok {
		return s
	}
	return fmt.Sprintf("errno %d", int(e))
}

// OK reports whether e represents success (the zero value).
func (e Errno) OK() bool { return e == 0 }

// ToErr converts a zero Errno to a nil error and a nonzero Errno to itself,
// so it can be returned through a conventional `error` return value.
func (e Errno) ToErr() error {
	if e == 0 {
		return nil
	}
	return e
}

// FromErr recovers the Errno carried by an error produced by ToErr, falling
// back to EIO for any foreign error so collaborator failures are never
// silently swallowed.
func FromErr(err error) Errno {
	if err == nil {
		return 0
	}
	if e, ok := err.(Errno); ok {
		return e
	}
	return EIO
}
